package scenes_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"storyreel/internal/scenes"
)

func TestNormalizeValidDocument(t *testing.T) {
	raw := `{"Scenes":[
		{"scene_id":1,"description":"A village at dawn.","visual_focus":"wide shot, misty"},
		{"scene_id":2,"description":"A farmer walks out.","visual_focus":"medium shot"}
	]}`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 2 {
		t.Fatalf("scene count = %d, want 2", len(doc.Scenes))
	}
	if doc.Scenes[0].SceneID != 1 || doc.Scenes[1].SceneID != 2 {
		t.Fatalf("unexpected ids: %+v", doc.Scenes)
	}
	if doc.Scenes[0].Description != "A village at dawn." {
		t.Fatalf("description = %q", doc.Scenes[0].Description)
	}
}

func TestNormalizeFillsMissingFields(t *testing.T) {
	raw := `{"Scenes":[{"scene_id":2,"description":"A quiet field at dusk."}]}`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 1 {
		t.Fatalf("scene count = %d, want 1", len(doc.Scenes))
	}
	got := doc.Scenes[0]
	if got.SceneID != 2 || got.Description != "A quiet field at dusk." {
		t.Fatalf("unexpected scene: %+v", got)
	}
	if got.VisualFocus != "clear subject, cinematic lighting, realistic" {
		t.Fatalf("visual_focus = %q", got.VisualFocus)
	}
}

func TestNormalizeSchemaCompleteness(t *testing.T) {
	raw := `{"Scenes":[{"scene_id":1},{"scene_id":2,"text":"An old well."}]}`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 2 {
		t.Fatalf("scene count = %d, want 2", len(doc.Scenes))
	}
	if doc.Scenes[0].Description != scenes.PlaceholderDescription {
		t.Fatalf("placeholder description missing: %+v", doc.Scenes[0])
	}
	if doc.Scenes[1].Description != "An old well." {
		t.Fatalf("text fallback not applied: %+v", doc.Scenes[1])
	}
	for _, scene := range doc.Scenes {
		if scene.Description == "" || scene.VisualFocus == "" {
			t.Fatalf("scene not schema-complete: %+v", scene)
		}
	}
}

func TestNormalizeDedupFirstWins(t *testing.T) {
	raw := `{"Scenes":[
		{"scene_id":1,"description":"First version.","visual_focus":"close up"},
		{"scene_id":1,"description":"Second version.","visual_focus":"wide"}
	]}`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 1 {
		t.Fatalf("scene count = %d, want 1", len(doc.Scenes))
	}
	if doc.Scenes[0].Description != "First version." || doc.Scenes[0].VisualFocus != "close up" {
		t.Fatalf("expected first occurrence to win: %+v", doc.Scenes[0])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	normalizer := scenes.NewNormalizer(nil)
	first := normalizer.Normalize(`{"Scenes":[
		{"scene_id":3,"description":"A river bend."},
		{"description":"No id at all."}
	]}`)

	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second := normalizer.Normalize(string(encoded))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNormalizeBareArray(t *testing.T) {
	raw := `[{"description":"A lone tree."},{"description":"A storm rolls in."}]`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 2 {
		t.Fatalf("scene count = %d, want 2", len(doc.Scenes))
	}
	if doc.Scenes[0].SceneID != 1 || doc.Scenes[1].SceneID != 2 {
		t.Fatalf("positional ids not assigned: %+v", doc.Scenes)
	}
}

func TestNormalizeConcatenatedArrays(t *testing.T) {
	raw := `[{"description":"One."}] [{"description":"Two."}]`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 2 {
		t.Fatalf("scene count = %d, want 2: %+v", len(doc.Scenes), doc.Scenes)
	}
}

func TestNormalizeRepairsNearJSON(t *testing.T) {
	raw := "```json\n{\"Scenes\":[{\"scene_id\":1,\"description\":\"A door creaks open.\"},]}\n```"

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 1 {
		t.Fatalf("scene count = %d, want 1", len(doc.Scenes))
	}
	if doc.Scenes[0].Description != "A door creaks open." {
		t.Fatalf("unexpected scene: %+v", doc.Scenes[0])
	}
}

func TestNormalizeUnrecoverableReturnsEmpty(t *testing.T) {
	for _, raw := range []string{"", "not json at all", `{"Scenes": 42}`} {
		doc := scenes.NewNormalizer(nil).Normalize(raw)
		if len(doc.Scenes) != 0 {
			t.Fatalf("Normalize(%q) = %+v, want empty", raw, doc.Scenes)
		}
	}
}

func TestNormalizeFloatSceneID(t *testing.T) {
	raw := `{"Scenes":[{"scene_id":2.0,"description":"Clouds drift."}]}`

	doc := scenes.NewNormalizer(nil).Normalize(raw)
	if len(doc.Scenes) != 1 || doc.Scenes[0].SceneID != 2 {
		t.Fatalf("unexpected scenes: %+v", doc.Scenes)
	}
}

func TestRepairJSONBalancesBrackets(t *testing.T) {
	repaired := scenes.RepairJSON(`{"Scenes":[{"scene_id":1,"description":"Cut off`)
	var doc scenes.Document
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		t.Fatalf("repaired output still unparsable: %v\n%s", err, repaired)
	}
}

func TestArtifactNameRoundTrip(t *testing.T) {
	cases := []struct {
		id   int
		name string
	}{
		{1, "scene_01"},
		{7, "scene_07"},
		{12, "scene_12"},
	}
	for _, tc := range cases {
		if got := scenes.ArtifactName(tc.id); got != tc.name {
			t.Errorf("ArtifactName(%d) = %q, want %q", tc.id, got, tc.name)
		}
		id, ok := scenes.ParseArtifactID(tc.name + ".mp4")
		if !ok || id != tc.id {
			t.Errorf("ParseArtifactID(%s.mp4) = %d, %v", tc.name, id, ok)
		}
	}
	if _, ok := scenes.ParseArtifactID("cover.png"); ok {
		t.Error("ParseArtifactID should reject non-scene filenames")
	}
}

func TestDocumentAcceptsEitherKeyCasing(t *testing.T) {
	for _, raw := range []string{
		`{"Scenes":[{"scene_id":1,"description":"x","visual_focus":"y"}]}`,
		`{"scenes":[{"scene_id":1,"description":"x","visual_focus":"y"}]}`,
	} {
		var doc scenes.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
		if len(doc.Scenes) != 1 {
			t.Fatalf("scene count = %d for %q", len(doc.Scenes), raw)
		}
	}
}
