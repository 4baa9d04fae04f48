// Package tts synthesizes narration audio through the Google Cloud
// Text-to-Speech REST API and measures clip durations from the returned
// WAV headers.
package tts
