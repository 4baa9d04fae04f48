package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/scenes"
	"storyreel/internal/services"
)

// CommandRunner executes an external command and returns its combined
// output. Tests substitute fakes so no tools are spawned.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// StatusRecorder receives scene render state transitions. The sqlite run
// store implements it; a nop recorder is used when no store is attached.
type StatusRecorder interface {
	SceneRendering(ctx context.Context, sceneID int) error
	SceneDone(ctx context.Context, sceneID int, effect string, output string) error
	SceneFailed(ctx context.Context, sceneID int, effect string, cause string) error
	SceneSkipped(ctx context.Context, sceneID int, reason string) error
}

type nopRecorder struct{}

func (nopRecorder) SceneRendering(context.Context, int) error            { return nil }
func (nopRecorder) SceneDone(context.Context, int, string, string) error { return nil }
func (nopRecorder) SceneFailed(context.Context, int, string, string) error {
	return nil
}
func (nopRecorder) SceneSkipped(context.Context, int, string) error { return nil }

// Summary aggregates the outcome of a render batch.
type Summary struct {
	Rendered  int
	Fallbacks int
	Skipped   int
	Failed    int
}

// Renderer turns scene images plus narration audio into animated clips.
// A failed primary effect gets exactly one retry with the fallback
// effect; a scene is never attempted a third time.
type Renderer struct {
	ffmpegBin  string
	ffprobeBin string
	profile    Profile
	run        CommandRunner
	rng        *rand.Rand
	logger     *slog.Logger
	recorder   StatusRecorder
}

// Option customizes a renderer.
type Option func(*Renderer)

// WithCommandRunner injects the process runner used for ffmpeg.
func WithCommandRunner(run CommandRunner) Option {
	return func(r *Renderer) {
		if run != nil {
			r.run = run
		}
	}
}

// WithRand injects the source used for effect selection.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithRecorder attaches a state recorder for scene transitions.
func WithRecorder(rec StatusRecorder) Option {
	return func(r *Renderer) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New constructs a renderer with the given tool binaries and output profile.
func New(ffmpegBin string, ffprobeBin string, profile Profile, logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		ffmpegBin:  ffmpegBin,
		ffprobeBin: ffprobeBin,
		profile:    profile,
		run:        defaultRunner,
		rng:        rand.New(rand.NewSource(rand.Int63())),
		logger:     logger,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderDocument renders every scene in the document into outDir. Missing
// artifacts skip the scene and the batch continues; only an empty
// document is an error.
func (r *Renderer) RenderDocument(ctx context.Context, doc scenes.Document, projectDir string, imagesDir string, outDir string) (Summary, error) {
	if len(doc.Scenes) == 0 {
		return Summary{}, services.Wrap(services.ErrValidation, "render", "load scenes", "no scenes to render", nil)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "render", "ensure output dir", outDir, err)
	}

	doc.Sort()
	var summary Summary
	for _, scene := range doc.Scenes {
		sceneCtx := services.WithSceneID(ctx, scene.SceneID)
		name := scenes.ArtifactName(scene.SceneID)

		imagePath := filepath.Join(imagesDir, name+".png")
		if _, err := os.Stat(imagePath); err != nil {
			r.skip(sceneCtx, scene.SceneID, &summary, "missing image "+imagePath)
			continue
		}
		audioPath := resolvePath(projectDir, scene.AudioFile)
		if audioPath == "" {
			r.skip(sceneCtx, scene.SceneID, &summary, "no audio file recorded")
			continue
		}
		if _, err := os.Stat(audioPath); err != nil {
			r.skip(sceneCtx, scene.SceneID, &summary, "missing audio "+audioPath)
			continue
		}

		duration, err := r.probeDuration(sceneCtx, audioPath)
		if err != nil {
			r.skip(sceneCtx, scene.SceneID, &summary, "unreadable audio duration: "+err.Error())
			continue
		}

		outputPath := filepath.Join(outDir, name+".mp4")
		effect := r.pickEffect()
		if err := r.recorder.SceneRendering(sceneCtx, scene.SceneID); err != nil {
			r.logger.Warn("run store update failed", logging.Error(err))
		}
		r.logger.Info("rendering scene",
			logging.Int("scene_id", scene.SceneID),
			logging.String("effect", string(effect)),
			logging.Float64("duration", duration))

		_, primaryErr := r.run(sceneCtx, r.ffmpegBin, effect.Args(imagePath, audioPath, outputPath, duration, r.profile)...)
		if primaryErr == nil {
			summary.Rendered++
			r.recordDone(sceneCtx, scene.SceneID, effect, outputPath)
			continue
		}
		r.logger.Warn("effect failed, retrying with fallback",
			logging.Int("scene_id", scene.SceneID),
			logging.String("effect", string(effect)),
			logging.Error(primaryErr))

		// One fallback attempt, never a third.
		if _, err := r.run(sceneCtx, r.ffmpegBin, FallbackEffect.Args(imagePath, audioPath, outputPath, duration, r.profile)...); err != nil {
			summary.Failed++
			r.logger.Error("fallback render failed",
				logging.Int("scene_id", scene.SceneID),
				logging.Error(err))
			if recErr := r.recorder.SceneFailed(sceneCtx, scene.SceneID, string(FallbackEffect), err.Error()); recErr != nil {
				r.logger.Warn("run store update failed", logging.Error(recErr))
			}
			continue
		}
		summary.Rendered++
		summary.Fallbacks++
		r.recordDone(sceneCtx, scene.SceneID, FallbackEffect, outputPath)
	}

	r.logger.Info("scene rendering complete",
		logging.Int("rendered", summary.Rendered),
		logging.Int("fallbacks", summary.Fallbacks),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

func (r *Renderer) recordDone(ctx context.Context, sceneID int, effect Effect, output string) {
	r.logger.Info("scene clip created",
		logging.Int("scene_id", sceneID),
		logging.String("output", output))
	if err := r.recorder.SceneDone(ctx, sceneID, string(effect), output); err != nil {
		r.logger.Warn("run store update failed", logging.Error(err))
	}
}

func (r *Renderer) skip(ctx context.Context, sceneID int, summary *Summary, reason string) {
	summary.Skipped++
	r.logger.Warn("skipping scene", logging.Int("scene_id", sceneID), logging.String("reason", reason))
	if err := r.recorder.SceneSkipped(ctx, sceneID, reason); err != nil {
		r.logger.Warn("run store update failed", logging.Error(err))
	}
}

func (r *Renderer) pickEffect() Effect {
	all := Effects()
	return all[r.rng.Intn(len(all))]
}

// probeDuration measures the audio clip, clamping to a floor so zoompan
// never receives a zero-length clip.
func (r *Renderer) probeDuration(ctx context.Context, audioPath string) (float64, error) {
	result, err := ffprobe.InspectWith(ctx, ffprobe.Runner(r.run), r.ffprobeBin, audioPath)
	if err != nil {
		return 0, err
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, fmt.Errorf("non-positive duration for %s", audioPath)
	}
	return math.Max(duration, 0.1), nil
}

func resolvePath(projectDir string, path string) string {
	path = strings.TrimSpace(strings.ReplaceAll(path, "\\", "/"))
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(projectDir, filepath.FromSlash(path))
}
