package subtitles

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatTimestamp converts seconds into the SRT timestamp form
// HH:MM:SS,mmm with millisecond precision.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp converts an SRT timestamp back into seconds. A period is
// tolerated in place of the standard comma millisecond separator.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// Render serializes cues as SRT: repeating blocks of index, timestamp range,
// text, and a blank separator line, joined with line feeds only.
func Render(cues []Cue) string {
	blocks := make([]string, 0, len(cues)*4)
	for _, cue := range cues {
		blocks = append(blocks,
			strconv.Itoa(cue.Index),
			FormatTimestamp(cue.Start)+" --> "+FormatTimestamp(cue.End),
			cue.Text,
			"",
		)
	}
	return strings.Join(blocks, "\n")
}

// WriteFile renders cues to an SRT file.
func WriteFile(path string, cues []Cue) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure subtitle directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Render(cues)), 0o644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}
	return nil
}

// Parse reads SRT content back into cues, for validation round-trips.
func Parse(content string) ([]Cue, error) {
	var cues []Cue
	blocks := strings.Split(strings.TrimSpace(content), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, fmt.Errorf("cue index %q: %w", lines[0], err)
		}
		rangeParts := strings.Split(lines[1], "-->")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("cue %d: invalid timestamp line %q", index, lines[1])
		}
		start, err := ParseTimestamp(rangeParts[0])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", index, err)
		}
		end, err := ParseTimestamp(rangeParts[1])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", index, err)
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

// ParseFile reads an SRT file back into cues.
func ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	return Parse(string(data))
}

// ValidateFile checks the minimal well-formedness contract: the first line is
// a bare integer and the second line contains the timestamp arrow.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read subtitles: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return fmt.Errorf("subtitle file %s has fewer than two lines", path)
	}
	if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
		return fmt.Errorf("subtitle file %s must start with a cue index", path)
	}
	if !strings.Contains(lines[1], "-->") {
		return fmt.Errorf("subtitle file %s second line must be a timestamp range", path)
	}
	return nil
}
