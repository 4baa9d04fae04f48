// Package subtitles converts scenes with measured audio durations into a
// contiguous, non-overlapping subtitle cue timeline and serializes it as an
// SRT file. Cue timestamps share the scene ordering used for clip
// concatenation, so the burned-in subtitles stay aligned with the stitched
// video.
package subtitles
