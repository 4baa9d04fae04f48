package tts

import (
	"encoding/binary"
	"errors"
	"math"
)

// WAVDuration reads the RIFF header of LINEAR16 WAV bytes and returns the
// playback duration in seconds rounded to two decimals.
func WAVDuration(data []byte) (float64, error) {
	if len(data) < 12 {
		return 0, errors.New("wav: file too short")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, errors.New("wav: missing RIFF/WAVE header")
	}

	var byteRate uint32
	var dataSize uint32
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8
		switch chunkID {
		case "fmt ":
			if body+16 > len(data) {
				return 0, errors.New("wav: truncated fmt chunk")
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			dataSize = chunkSize
			if remaining := len(data) - body; int(chunkSize) > remaining {
				dataSize = uint32(remaining)
			}
		}
		if chunkID == "data" && byteRate != 0 {
			break
		}
		// Chunks are word aligned.
		advance := int(chunkSize)
		if advance%2 == 1 {
			advance++
		}
		offset = body + advance
	}

	if byteRate == 0 {
		return 0, errors.New("wav: fmt chunk missing or zero byte rate")
	}
	if dataSize == 0 {
		return 0, errors.New("wav: data chunk missing or empty")
	}
	seconds := float64(dataSize) / float64(byteRate)
	return math.Round(seconds*100) / 100, nil
}
