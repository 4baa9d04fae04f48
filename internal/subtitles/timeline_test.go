package subtitles_test

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/scenes"
	"storyreel/internal/subtitles"
)

const epsilon = 1e-9

func buildScenes(durations ...float64) scenes.Document {
	doc := scenes.Document{}
	for i, d := range durations {
		doc.Scenes = append(doc.Scenes, scenes.Scene{
			SceneID:       i + 1,
			Description:   "Scene description.",
			Narration:     "A quiet village wakes, mist drifting over rooftops.",
			AudioDuration: d,
		})
	}
	return doc
}

func TestBuildTimelineContiguity(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := buildScenes(4.0, 6.0, 2.5)

	cues := builder.Build(doc)
	if len(cues) == 0 {
		t.Fatal("expected cues")
	}

	for i, cue := range cues {
		if cue.Index != i+1 {
			t.Fatalf("cue %d has index %d, want %d", i, cue.Index, i+1)
		}
		if cue.End <= cue.Start {
			t.Fatalf("cue %d has end %v <= start %v", i, cue.End, cue.Start)
		}
		if i > 0 && math.Abs(cues[i-1].End-cue.Start) > epsilon {
			t.Fatalf("gap between cue %d end %v and cue %d start %v", i-1, cues[i-1].End, i, cue.Start)
		}
	}
	if cues[0].Start != 0 {
		t.Fatalf("first cue starts at %v, want 0", cues[0].Start)
	}
	total := cues[len(cues)-1].End
	if math.Abs(total-12.5) > epsilon {
		t.Fatalf("timeline ends at %v, want 12.5", total)
	}
}

func TestBuildTimelinePhraseCount(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{{
		SceneID:       1,
		Narration:     "A quiet village wakes, mist drifting over rooftops.",
		AudioDuration: 6.0,
	}}}

	cues := builder.Build(doc)
	// Two comma/period-delimited phrases, each within the 7-word cap.
	if len(cues) != 2 {
		t.Fatalf("cue count = %d, want 2: %+v", len(cues), cues)
	}
	for _, cue := range cues {
		if math.Abs((cue.End-cue.Start)-3.0) > epsilon {
			t.Fatalf("phrase duration = %v, want even 3.0 split", cue.End-cue.Start)
		}
	}
}

func TestBuildTimelineWordWindowSplit(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.Options{MaxWordsPerCue: 3}, nil)
	doc := scenes.Document{Scenes: []scenes.Scene{{
		SceneID:       1,
		Narration:     "one two three four five six seven eight",
		AudioDuration: 8.0,
	}}}

	cues := builder.Build(doc)
	if len(cues) != 3 {
		t.Fatalf("cue count = %d, want 3: %+v", len(cues), cues)
	}
	wants := []string{"one two three", "four five six", "seven eight"}
	for i, want := range wants {
		if cues[i].Text != want {
			t.Fatalf("cue %d text = %q, want %q", i, cues[i].Text, want)
		}
	}
}

func TestBuildTimelineZeroDurationExclusion(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{
		{SceneID: 1, Narration: "First scene narration", AudioDuration: 3.0},
		{SceneID: 2, Narration: "Silent scene", AudioDuration: 0},
		{SceneID: 3, Narration: "Missing audio", AudioDuration: -1},
		{SceneID: 4, Narration: "Last scene narration", AudioDuration: 2.0},
	}}

	cues := builder.Build(doc)
	if len(cues) != 2 {
		t.Fatalf("cue count = %d, want 2: %+v", len(cues), cues)
	}
	// Clock must not advance for the skipped scenes.
	if math.Abs(cues[1].Start-3.0) > epsilon {
		t.Fatalf("second cue starts at %v, want 3.0", cues[1].Start)
	}
	if math.Abs(cues[1].End-5.0) > epsilon {
		t.Fatalf("timeline ends at %v, want 5.0", cues[1].End)
	}
}

func TestBuildTimelineTextPriority(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{
		{SceneID: 1, Narration: "Spoken narration", Description: "Visual description", AudioDuration: 2.0},
		{SceneID: 2, Description: "Fallback description", AudioDuration: 2.0},
		{SceneID: 3, Text: "Raw text field", AudioDuration: 2.0},
		{SceneID: 4, AudioDuration: 2.0},
	}}

	cues := builder.Build(doc)
	if len(cues) != 3 {
		t.Fatalf("cue count = %d, want 3: %+v", len(cues), cues)
	}
	wants := []string{"Spoken narration", "Fallback description", "Raw text field"}
	for i, want := range wants {
		if cues[i].Text != want {
			t.Fatalf("cue %d text = %q, want %q", i, cues[i].Text, want)
		}
	}
}

func TestBuildTimelineStripsFillers(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{{
		SceneID:       1,
		Narration:     "The village wakes You Know slowly",
		AudioDuration: 2.0,
	}}}

	cues := builder.Build(doc)
	if len(cues) != 1 {
		t.Fatalf("cue count = %d, want 1", len(cues))
	}
	if strings.Contains(strings.ToLower(cues[0].Text), "you know") {
		t.Fatalf("filler not stripped: %q", cues[0].Text)
	}
	if cues[0].Text != "The village wakes slowly" {
		t.Fatalf("cue text = %q", cues[0].Text)
	}
}

func TestBuildTimelineFillersMatchWholeWords(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{{
		SceneID:       1,
		Narration:     "A drum echoes across the autumn field.",
		AudioDuration: 2.0,
	}}}

	cues := builder.Build(doc)
	if len(cues) != 1 {
		t.Fatalf("cue count = %d, want 1: %+v", len(cues), cues)
	}
	// "um"/"uh" are filler words, not substrings of ordinary vocabulary.
	if cues[0].Text != "A drum echoes across the autumn field" {
		t.Fatalf("cue text = %q", cues[0].Text)
	}
}

func TestBuildTimelineStripsPunctuatedFillers(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	doc := scenes.Document{Scenes: []scenes.Scene{{
		SceneID:       1,
		Narration:     "Um, the well was dry",
		AudioDuration: 2.0,
	}}}

	cues := builder.Build(doc)
	if len(cues) != 1 {
		t.Fatalf("cue count = %d, want 1: %+v", len(cues), cues)
	}
	if cues[0].Text != "the well was dry" {
		t.Fatalf("cue text = %q", cues[0].Text)
	}
}

func TestSRTRoundTrip(t *testing.T) {
	builder := subtitles.NewBuilder(subtitles.DefaultOptions(), nil)
	cues := builder.Build(buildScenes(4.5, 3.25))

	path := filepath.Join(t.TempDir(), "subtitles.srt")
	if err := subtitles.WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := subtitles.ValidateFile(path); err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}

	parsed, err := subtitles.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(parsed) != len(cues) {
		t.Fatalf("parsed %d cues, want %d", len(parsed), len(cues))
	}
	for i := range cues {
		if parsed[i].Index != cues[i].Index || parsed[i].Text != cues[i].Text {
			t.Fatalf("cue %d mismatch: %+v vs %+v", i, parsed[i], cues[i])
		}
		// Times round-trip to millisecond precision.
		if math.Abs(parsed[i].Start-cues[i].Start) > 0.001 || math.Abs(parsed[i].End-cues[i].End) > 0.001 {
			t.Fatalf("cue %d timestamps drifted: %+v vs %+v", i, parsed[i], cues[i])
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{61.25, "00:01:01,250"},
		{3661.007, "01:01:01,007"},
	}
	for _, tc := range cases {
		if got := subtitles.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestRenderUsesLineFeedsOnly(t *testing.T) {
	content := subtitles.Render([]subtitles.Cue{{Index: 1, Start: 0, End: 1, Text: "Hello"}})
	if strings.Contains(content, "\r") {
		t.Fatal("SRT output must use LF line endings only")
	}
	lines := strings.Split(content, "\n")
	if lines[0] != "1" || !strings.Contains(lines[1], "-->") || lines[2] != "Hello" {
		t.Fatalf("unexpected block layout: %q", content)
	}
}
