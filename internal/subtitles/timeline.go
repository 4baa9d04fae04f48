package subtitles

import (
	"log/slog"
	"strings"

	"storyreel/internal/logging"
	"storyreel/internal/scenes"
)

// Cue is one timestamped subtitle entry covering a sub-span of a scene's
// narration. Indices are 1-based and globally sequential across the whole
// timeline, never reset per scene.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Options tunes phrase segmentation.
type Options struct {
	// MaxWordsPerCue caps phrase length; longer chunks are split into
	// fixed-size word windows.
	MaxWordsPerCue int
	// FillerPhrases are removed from narration before segmentation, matched
	// case-insensitively on whole words. An editorial cleanup rule, not a
	// correctness requirement.
	FillerPhrases []string
}

// DefaultOptions returns the reference segmentation settings.
func DefaultOptions() Options {
	return Options{
		MaxWordsPerCue: 7,
		FillerPhrases:  []string{"you know", "sort of", "kind of", "um", "uh"},
	}
}

// Builder converts scenes with measured audio durations into a gap-free,
// non-overlapping cue timeline.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder constructs a Builder. A nil logger disables diagnostics.
func NewBuilder(opts Options, logger *slog.Logger) *Builder {
	if opts.MaxWordsPerCue <= 0 {
		opts.MaxWordsPerCue = DefaultOptions().MaxWordsPerCue
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{opts: opts, logger: logger}
}

// Build walks the scenes in input order and emits cues on a running clock
// starting at zero.
//
// A scene with a missing or non-positive duration contributes no cues and
// does not advance the clock: no audio exists to allocate time against. Each
// contributing scene's duration is split evenly across its phrases, a
// documented simplification that ignores phrase length.
func (b *Builder) Build(doc scenes.Document) []Cue {
	var cues []Cue
	clock := 0.0
	index := 1

	for _, scene := range doc.Scenes {
		if scene.AudioDuration <= 0 {
			b.logger.Warn("scene skipped in subtitle timeline",
				logging.Int("scene_id", scene.SceneID),
				logging.String("reason", "no audio duration"),
			)
			continue
		}

		text := narrationText(scene)
		if text == "" {
			b.logger.Warn("scene skipped in subtitle timeline",
				logging.Int("scene_id", scene.SceneID),
				logging.String("reason", "no narration text"),
			)
			continue
		}

		phrases := b.segment(text)
		if len(phrases) == 0 {
			b.logger.Warn("scene skipped in subtitle timeline",
				logging.Int("scene_id", scene.SceneID),
				logging.String("reason", "narration empty after cleanup"),
			)
			continue
		}

		phraseDuration := scene.AudioDuration / float64(len(phrases))
		for _, phrase := range phrases {
			cues = append(cues, Cue{
				Index: index,
				Start: clock,
				End:   clock + phraseDuration,
				Text:  phrase,
			})
			clock += phraseDuration
			index++
		}
	}

	return cues
}

// narrationText selects the text spoken for a scene: the explicit narration,
// else the description, else the raw text field hand-staged inputs carry.
func narrationText(scene scenes.Scene) string {
	if text := strings.TrimSpace(scene.Narration); text != "" {
		return text
	}
	if text := strings.TrimSpace(scene.Description); text != "" {
		return text
	}
	return strings.TrimSpace(scene.Text)
}

// segment splits narration into phrase-length chunks: first on sentence
// punctuation, then any chunk longer than the word cap into fixed word
// windows.
func (b *Builder) segment(text string) []string {
	cleaned := b.stripFillers(text)

	var phrases []string
	for _, chunk := range splitOnPunctuation(cleaned) {
		words := strings.Fields(chunk)
		if len(words) == 0 {
			continue
		}
		for start := 0; start < len(words); start += b.opts.MaxWordsPerCue {
			end := start + b.opts.MaxWordsPerCue
			if end > len(words) {
				end = len(words)
			}
			phrases = append(phrases, strings.Join(words[start:end], " "))
		}
	}
	return phrases
}

func (b *Builder) stripFillers(text string) string {
	fillers := make([][]string, 0, len(b.opts.FillerPhrases))
	for _, phrase := range b.opts.FillerPhrases {
		if words := strings.Fields(strings.ToLower(phrase)); len(words) > 0 {
			fillers = append(fillers, words)
		}
	}
	if len(fillers) == 0 {
		return text
	}

	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if n := matchFillerAt(words, i, fillers); n > 0 {
			i += n
			continue
		}
		kept = append(kept, words[i])
		i++
	}
	return strings.Join(kept, " ")
}

// matchFillerAt reports the word length of the filler phrase starting at word
// i, or zero. Matching is case-insensitive on whole words; a filler never
// matches inside a longer word.
func matchFillerAt(words []string, i int, fillers [][]string) int {
	for _, filler := range fillers {
		if i+len(filler) > len(words) {
			continue
		}
		matched := true
		for j, want := range filler {
			if foldWord(words[i+j]) != want {
				matched = false
				break
			}
		}
		if matched {
			return len(filler)
		}
	}
	return 0
}

// foldWord lowers a word and trims surrounding punctuation for comparison.
func foldWord(word string) string {
	return strings.ToLower(strings.Trim(word, ".,!?;:\"'"))
}

func splitOnPunctuation(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == ','
	})
}
