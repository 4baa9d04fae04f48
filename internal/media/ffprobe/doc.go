// Package ffprobe wraps the ffprobe tool for measuring media durations.
package ffprobe
