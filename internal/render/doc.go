// Package render turns per-scene still images and narration audio into
// animated video clips with ffmpeg. Effects are chosen at random per
// scene; a failing effect is retried once with the slow-zoom fallback.
package render
