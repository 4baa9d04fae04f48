// Package pipeline orchestrates the script-to-video stages: analyze,
// enrich, audio, images, subtitles, render, stitch. Stages exchange JSON
// artifacts through the project directory, so each one can also be run
// on its own.
package pipeline
