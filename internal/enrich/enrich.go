package enrich

import (
	"math"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/scenes"
)

// VoiceRule maps a scene id to a voice-style preset.
type VoiceRule struct {
	SceneID int
	Style   scenes.VoiceStyle
}

// BackgroundRule maps description keywords to an ambient-audio preset.
// Rules are evaluated in order; the first keyword match wins.
type BackgroundRule struct {
	Keywords []string
	Preset   string
}

// Settings holds the enrichment policy tables. They are passed in explicitly
// rather than read from package state so tests can override rates and presets.
type Settings struct {
	WordsPerSecond    float64
	CloseClause       string
	VoiceRules        []VoiceRule
	DefaultVoice      scenes.VoiceStyle
	BackgroundRules   []BackgroundRule
	DefaultBackground string
}

// DefaultSettings returns the reference enrichment policy.
func DefaultSettings() Settings {
	return Settings{
		WordsPerSecond: 2.2,
		CloseClause:    ", unfolding quietly.",
		VoiceRules: []VoiceRule{
			{SceneID: 1, Style: scenes.VoiceStyle{Tone: "calm, contemplative", Pace: "slow", Emotion: "peaceful"}},
			{SceneID: 2, Style: scenes.VoiceStyle{Tone: "gentle, narrative", Pace: "moderate", Emotion: "empathetic"}},
		},
		DefaultVoice: scenes.VoiceStyle{Tone: "calm, narrative", Pace: "moderate", Emotion: "neutral"},
		BackgroundRules: []BackgroundRule{
			{Keywords: []string{"village", "houses"}, Preset: "ambient village sounds, light wind"},
			{Keywords: []string{"field", "earth"}, Preset: "soft wind, distant birds"},
			{Keywords: []string{"house", "room"}, Preset: "subtle room tone"},
		},
		DefaultBackground: "soft ambient atmosphere",
	}
}

// SettingsFromConfig builds enrichment settings from configuration, keeping
// the reference policy tables.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := DefaultSettings()
	if cfg == nil {
		return settings
	}
	if cfg.Narration.WordsPerSecond > 0 {
		settings.WordsPerSecond = cfg.Narration.WordsPerSecond
	}
	if cfg.Narration.CloseClause != "" {
		settings.CloseClause = cfg.Narration.CloseClause
	}
	return settings
}

// Enricher attaches narration, a duration estimate, and audio tags to scenes.
type Enricher struct {
	settings Settings
}

// New constructs an Enricher with the provided settings.
func New(settings Settings) *Enricher {
	if settings.WordsPerSecond <= 0 {
		settings.WordsPerSecond = DefaultSettings().WordsPerSecond
	}
	return &Enricher{settings: settings}
}

// EnrichDocument enriches every scene in order and returns a new document.
func (e *Enricher) EnrichDocument(doc scenes.Document) scenes.Document {
	enriched := make([]scenes.Scene, len(doc.Scenes))
	for i, scene := range doc.Scenes {
		enriched[i] = e.Enrich(scene)
	}
	return scenes.Document{Scenes: enriched}
}

// Enrich is a pure transform of one scene: narration derived from the
// description, a word-count duration estimate, and voice/background tags from
// the policy tables.
func (e *Enricher) Enrich(scene scenes.Scene) scenes.Scene {
	scene.Narration = e.Narration(scene.Description)
	scene.AudioDuration = e.EstimateDuration(scene.Narration)
	scene.VoiceStyle = e.voiceStyle(scene.SceneID)
	scene.BackgroundAudio = e.backgroundAudio(scene.Description)
	return scene
}

// Narration rewrites a scene description into spoken narration: the trailing
// period is dropped and a fixed soft-close clause appended for consistent
// prosody. Deliberately lightweight so it can be swapped for an LLM-backed
// generator without touching the surrounding contract.
func (e *Enricher) Narration(description string) string {
	narration := strings.TrimSpace(description)
	narration = strings.TrimSuffix(narration, ".")
	return narration + e.settings.CloseClause
}

// EstimateDuration returns the word-count speech duration estimate in seconds,
// rounded to two decimal places. It is replaced by the measured duration once
// real audio exists.
func (e *Enricher) EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return math.Round(float64(words)/e.settings.WordsPerSecond*100) / 100
}

func (e *Enricher) voiceStyle(sceneID int) scenes.VoiceStyle {
	for _, rule := range e.settings.VoiceRules {
		if rule.SceneID == sceneID {
			return rule.Style
		}
	}
	return e.settings.DefaultVoice
}

func (e *Enricher) backgroundAudio(description string) string {
	lowered := strings.ToLower(description)
	for _, rule := range e.settings.BackgroundRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Preset
			}
		}
	}
	return e.settings.DefaultBackground
}
