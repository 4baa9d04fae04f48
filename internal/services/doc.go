// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp scene IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that distinguish fatal
//     run-level failures (missing inputs, bad configuration) from scene-scoped
//     ones (external call failures, missing artifacts).
//
// Use these helpers when wiring new stage logic so operational behaviour stays
// uniform across the pipeline.
package services
