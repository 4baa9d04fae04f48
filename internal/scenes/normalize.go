package scenes

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"storyreel/internal/logging"
)

const (
	// PlaceholderDescription fills scenes the model emitted without any text.
	PlaceholderDescription = "Visually rich cinematic scene"
	// PlaceholderVisualFocus fills scenes missing framing/lighting guidance.
	PlaceholderVisualFocus = "clear subject, cinematic lighting, realistic"
)

var adjacentArrays = regexp.MustCompile(`\]\s*\[`)

// Normalizer converts untrusted model output into a canonical, deduplicated,
// schema-complete scene list. It never returns an error to the caller; an
// unrecoverably malformed payload yields an empty document and a logged
// diagnostic, which callers must treat as a hard pipeline stop.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer constructs a Normalizer. A nil logger disables diagnostics.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize parses raw model output and returns the canonical scene list.
//
// The raw text may be valid JSON, near-JSON with minor syntax damage, several
// concatenated JSON arrays, or a bare array instead of the Scenes envelope.
func (n *Normalizer) Normalize(raw string) Document {
	cleaned := cleanModelOutput(raw)
	if cleaned == "" {
		n.logger.Error("scene normalization failed", logging.String("reason", "empty model output"))
		return Document{}
	}

	entries, err := parseSceneEntries(cleaned)
	if err != nil {
		repaired := RepairJSON(cleaned)
		entries, err = parseSceneEntries(repaired)
		if err != nil {
			n.logger.Error("scene normalization failed",
				logging.String("reason", "json unparsable after repair"),
				logging.Error(err),
			)
			return Document{}
		}
	}

	doc := n.normalizeEntries(entries)
	if len(doc.Scenes) < len(entries) {
		n.logger.Info("scene list deduplicated",
			logging.Int("raw_count", len(entries)),
			logging.Int("normalized_count", len(doc.Scenes)),
		)
	}
	return doc
}

// cleanModelOutput strips the formatting noise the model is known to produce:
// newlines inside the payload and arrays concatenated back-to-back.
func cleanModelOutput(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	cleaned = adjacentArrays.ReplaceAllString(cleaned, "], [")
	return strings.TrimSpace(cleaned)
}

// rawScene tolerates the loose shapes the model produces: numeric ids as
// floats, text under a "text" key, absent fields.
type rawScene struct {
	SceneID     json.Number `json:"scene_id"`
	Description string      `json:"description"`
	VisualFocus string      `json:"visual_focus"`
	Text        string      `json:"text"`
}

func parseSceneEntries(payload string) ([]rawScene, error) {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "[") {
		var entries []rawScene
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var envelope struct {
		Upper []rawScene `json:"Scenes"`
		Lower []rawScene `json:"scenes"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return nil, err
	}
	if envelope.Upper != nil {
		return envelope.Upper, nil
	}
	return envelope.Lower, nil
}

func (n *Normalizer) normalizeEntries(entries []rawScene) Document {
	normalized := make([]Scene, 0, len(entries))
	seen := make(map[int]struct{}, len(entries))

	for idx, entry := range entries {
		id := sceneID(entry.SceneID, idx+1)
		if _, dup := seen[id]; dup {
			// Duplicates are model repetition, not meaningful variants;
			// the first occurrence wins.
			continue
		}
		seen[id] = struct{}{}

		description := strings.TrimSpace(entry.Description)
		if description == "" {
			description = strings.TrimSpace(entry.Text)
		}
		if description == "" {
			description = PlaceholderDescription
		}
		focus := strings.TrimSpace(entry.VisualFocus)
		if focus == "" {
			focus = PlaceholderVisualFocus
		}

		normalized = append(normalized, Scene{
			SceneID:     id,
			Description: description,
			VisualFocus: focus,
		})
	}

	return Document{Scenes: normalized}
}

func sceneID(value json.Number, fallback int) int {
	raw := strings.TrimSpace(value.String())
	if raw == "" {
		return fallback
	}
	if id, err := value.Int64(); err == nil {
		return int(id)
	}
	if f, err := value.Float64(); err == nil {
		return int(f)
	}
	return fallback
}
