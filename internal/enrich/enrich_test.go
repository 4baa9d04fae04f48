package enrich_test

import (
	"testing"

	"storyreel/internal/enrich"
	"storyreel/internal/scenes"
)

func TestNarrationStripsPeriodAndAppendsClause(t *testing.T) {
	enricher := enrich.New(enrich.DefaultSettings())

	got := enricher.Narration("A small village at dawn.")
	want := "A small village at dawn, unfolding quietly."
	if got != want {
		t.Fatalf("Narration = %q, want %q", got, want)
	}

	// No trailing period to strip.
	got = enricher.Narration("A small village at dawn")
	if got != want {
		t.Fatalf("Narration = %q, want %q", got, want)
	}
}

func TestEstimateDurationRounding(t *testing.T) {
	enricher := enrich.New(enrich.DefaultSettings())

	// 7 words / 2.2 wps = 3.1818... -> 3.18
	if got := enricher.EstimateDuration("one two three four five six seven"); got != 3.18 {
		t.Fatalf("EstimateDuration = %v, want 3.18", got)
	}
	if got := enricher.EstimateDuration(""); got != 0 {
		t.Fatalf("EstimateDuration(empty) = %v, want 0", got)
	}
}

func TestEstimateDurationHonorsConfiguredRate(t *testing.T) {
	settings := enrich.DefaultSettings()
	settings.WordsPerSecond = 2.0
	enricher := enrich.New(settings)

	if got := enricher.EstimateDuration("one two three four"); got != 2.0 {
		t.Fatalf("EstimateDuration = %v, want 2.0", got)
	}
}

func TestVoiceStyleRuleTable(t *testing.T) {
	enricher := enrich.New(enrich.DefaultSettings())

	first := enricher.Enrich(scenes.Scene{SceneID: 1, Description: "Opening."})
	if first.VoiceStyle.Pace != "slow" || first.VoiceStyle.Emotion != "peaceful" {
		t.Fatalf("scene 1 voice style = %+v", first.VoiceStyle)
	}
	second := enricher.Enrich(scenes.Scene{SceneID: 2, Description: "Second."})
	if second.VoiceStyle.Emotion != "empathetic" {
		t.Fatalf("scene 2 voice style = %+v", second.VoiceStyle)
	}
	later := enricher.Enrich(scenes.Scene{SceneID: 9, Description: "Later."})
	if later.VoiceStyle != (scenes.VoiceStyle{Tone: "calm, narrative", Pace: "moderate", Emotion: "neutral"}) {
		t.Fatalf("scene 9 voice style = %+v", later.VoiceStyle)
	}
}

func TestBackgroundAudioKeywordMatching(t *testing.T) {
	enricher := enrich.New(enrich.DefaultSettings())

	cases := []struct {
		description string
		want        string
	}{
		{"A small VILLAGE at dawn.", "ambient village sounds, light wind"},
		{"Mud houses under morning mist.", "ambient village sounds, light wind"},
		{"An open field stretches to the horizon.", "soft wind, distant birds"},
		{"Inside a dim room, a candle burns.", "subtle room tone"},
		{"A ship crosses the sea.", "soft ambient atmosphere"},
	}
	for _, tc := range cases {
		scene := enricher.Enrich(scenes.Scene{SceneID: 5, Description: tc.description})
		if scene.BackgroundAudio != tc.want {
			t.Errorf("background for %q = %q, want %q", tc.description, scene.BackgroundAudio, tc.want)
		}
	}
}

func TestEnrichDocumentIsDeterministic(t *testing.T) {
	enricher := enrich.New(enrich.DefaultSettings())
	doc := scenes.Document{Scenes: []scenes.Scene{
		{SceneID: 1, Description: "A village at dawn."},
		{SceneID: 2, Description: "A farmer in the field."},
	}}

	first := enricher.EnrichDocument(doc)
	second := enricher.EnrichDocument(doc)
	for i := range first.Scenes {
		if first.Scenes[i] != second.Scenes[i] {
			t.Fatalf("enrichment not deterministic at %d: %+v vs %+v", i, first.Scenes[i], second.Scenes[i])
		}
	}
	if first.Scenes[0].AudioDuration <= 0 {
		t.Fatal("expected positive duration estimate")
	}
	if doc.Scenes[0].Narration != "" {
		t.Fatal("input document must not be mutated")
	}
}
