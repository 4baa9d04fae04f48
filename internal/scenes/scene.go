package scenes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// VoiceStyle describes how a scene's narration should be spoken. The fields
// are opaque tags consumed by the speech-synthesis collaborator.
type VoiceStyle struct {
	Tone    string `json:"tone"`
	Pace    string `json:"pace"`
	Emotion string `json:"emotion"`
}

// Scene is one visual+narration unit of the output video.
//
// Text carries the raw "text" key found in loosely shaped scene files staged
// by hand; spoken-text selection falls back to it after Narration and
// Description. AudioDuration starts as a word-count estimate during
// enrichment and is replaced with the measured value once real audio exists;
// downstream stages only ever see the measured value.
type Scene struct {
	SceneID         int        `json:"scene_id"`
	Description     string     `json:"description"`
	VisualFocus     string     `json:"visual_focus"`
	Text            string     `json:"text,omitempty"`
	Narration       string     `json:"narration,omitempty"`
	AudioDuration   float64    `json:"audio_duration,omitempty"`
	VoiceStyle      VoiceStyle `json:"voice_style,omitzero"`
	BackgroundAudio string     `json:"background_audio,omitempty"`
	AudioFile       string     `json:"audio_file,omitempty"`
}

// Document is the scene list exchanged between pipeline stages.
type Document struct {
	Scenes []Scene
}

// MarshalJSON always emits the canonical upper-case Scenes key.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Scenes []Scene `json:"Scenes"`
	}{Scenes: d.Scenes})
}

// UnmarshalJSON accepts both Scenes and scenes keys; the casing varies
// between pipeline stages.
func (d *Document) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Upper []Scene `json:"Scenes"`
		Lower []Scene `json:"scenes"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.Upper != nil {
		d.Scenes = envelope.Upper
		return nil
	}
	d.Scenes = envelope.Lower
	return nil
}

// Sort orders scenes by ascending scene id. This is the single canonical
// ordering shared by the subtitle timeline and the stitcher.
func (d *Document) Sort() {
	sort.SliceStable(d.Scenes, func(i, j int) bool {
		return d.Scenes[i].SceneID < d.Scenes[j].SceneID
	})
}

// Load reads a scene document from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read scenes: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse scenes %s: %w", path, err)
	}
	return doc, nil
}

// Save writes a scene document to disk, creating parent directories as needed.
func Save(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scenes: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenes: %w", err)
	}
	return nil
}

// ArtifactName returns the zero-padded basename used for a scene's image,
// audio, and video artifacts (scene_01, scene_02, ...).
func ArtifactName(id int) string {
	return fmt.Sprintf("scene_%02d", id)
}

// ParseArtifactID recovers the numeric scene id from an artifact filename such
// as scene_07.mp4. Filenames are parsed back to integers so clip ordering is
// numeric, never lexical.
func ParseArtifactID(filename string) (int, bool) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	rest, ok := strings.CutPrefix(base, "scene_")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
