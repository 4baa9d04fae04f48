// Package stitch assembles rendered scene clips into the final video,
// concatenating them in numeric scene order and burning in the SRT
// subtitle track.
package stitch
