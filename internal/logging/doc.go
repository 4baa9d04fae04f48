// Package logging builds the slog loggers used across storyreel: a terse
// console handler for interactive use, a JSON handler for log files, and
// helpers that derive structured fields (scene id, stage, correlation id)
// from context.
package logging
