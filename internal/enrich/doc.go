// Package enrich attaches narration text, an estimated speech duration, a
// voice-style tag, and an inferred ambient-audio tag to normalized scenes.
// The transform is pure and deterministic; all policy (speaking rate, style
// presets, keyword tables) lives in an injected Settings value.
package enrich
