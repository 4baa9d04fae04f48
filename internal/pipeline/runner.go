package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/render"
	"storyreel/internal/runstore"
	"storyreel/internal/scenes"
	"storyreel/internal/services"
	"storyreel/internal/services/imagegen"
	"storyreel/internal/services/llm"
	"storyreel/internal/services/tts"
	"storyreel/internal/stitch"
)

// SceneExtractor produces raw scene JSON from a prose script.
type SceneExtractor interface {
	ExtractScenes(ctx context.Context, script string) (string, error)
}

// SpeechSynthesizer produces narration audio with a measured duration.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (tts.Result, error)
}

// ImageStager materializes one scene image on disk, skipping existing files.
type ImageStager interface {
	EnsureImage(ctx context.Context, path string, prompt string) (bool, error)
}

// ClipRenderer renders every scene of a document into per-scene clips.
type ClipRenderer interface {
	RenderDocument(ctx context.Context, doc scenes.Document, projectDir string, imagesDir string, outDir string) (render.Summary, error)
}

// VideoStitcher concatenates scene clips into the final video.
type VideoStitcher interface {
	Stitch(ctx context.Context, sceneVideosDir string, subtitlePath string, finalPath string) error
	DisplayTitle(scriptPath string) string
}

// Runner executes the pipeline stages against one project directory.
// Each stage reads the previous stage's artifact and writes its own, so
// stages can also be run individually between process restarts.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	extract  SceneExtractor
	synth    SpeechSynthesizer
	images   ImageStager
	renderer ClipRenderer
	stitcher VideoStitcher
	probe    ffprobe.Runner
	store    *runstore.Store
	throttle *throttle
}

// Option customizes a Runner, mainly so tests can substitute collaborators.
type Option func(*Runner)

// WithSceneExtractor overrides the scene extraction client.
func WithSceneExtractor(e SceneExtractor) Option {
	return func(r *Runner) { r.extract = e }
}

// WithSpeechSynthesizer overrides the TTS client.
func WithSpeechSynthesizer(s SpeechSynthesizer) Option {
	return func(r *Runner) { r.synth = s }
}

// WithImageStager overrides the image generator.
func WithImageStager(g ImageStager) Option {
	return func(r *Runner) { r.images = g }
}

// WithClipRenderer overrides the scene renderer.
func WithClipRenderer(cr ClipRenderer) Option {
	return func(r *Runner) { r.renderer = cr }
}

// WithVideoStitcher overrides the stitcher.
func WithVideoStitcher(vs VideoStitcher) Option {
	return func(r *Runner) { r.stitcher = vs }
}

// WithProbeRunner overrides the ffprobe process runner.
func WithProbeRunner(run ffprobe.Runner) Option {
	return func(r *Runner) { r.probe = run }
}

// WithRunStore attaches the sqlite run store used for render state.
func WithRunStore(store *runstore.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithSleeper overrides the throttle sleep function.
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.throttle.sleep = sleep
		}
	}
}

// New constructs a Runner wired to the real external collaborators.
// Options may replace any of them.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		throttle: &throttle{
			gap:   time.Duration(cfg.Workflow.RatePauseSeconds) * time.Second,
			sleep: sleepContext,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.extract == nil {
		r.extract = llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
	}
	if r.synth == nil {
		r.synth = tts.NewClient(tts.Config{
			APIKey:         cfg.TTS.APIKey,
			Endpoint:       cfg.TTS.Endpoint,
			LanguageCode:   cfg.TTS.LanguageCode,
			VoiceName:      cfg.TTS.VoiceName,
			TimeoutSeconds: cfg.TTS.TimeoutSeconds,
		})
	}
	if r.images == nil {
		client := imagegen.NewClient(imagegen.Config{
			Token:          cfg.ImageGen.Token,
			BaseURL:        cfg.ImageGen.BaseURL,
			Model:          cfg.ImageGen.Model,
			Width:          cfg.ImageGen.Width,
			Height:         cfg.ImageGen.Height,
			TimeoutSeconds: cfg.ImageGen.TimeoutSeconds,
		})
		r.images = imagegen.NewGenerator(client, logger, cfg.ImageGen.RatePauseSeconds, cfg.ImageGen.FailurePauseSeconds)
	}
	if r.renderer == nil {
		profile := render.Profile{
			Width:       cfg.Render.Width,
			Height:      cfg.Render.Height,
			FPS:         cfg.Render.FPS,
			FadeSeconds: cfg.Render.FadeSeconds,
		}
		renderOpts := []render.Option{}
		if r.store != nil {
			renderOpts = append(renderOpts, render.WithRecorder(r.store))
		}
		r.renderer = render.New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), profile, logger, renderOpts...)
	}
	if r.stitcher == nil {
		r.stitcher = stitch.New(cfg.FFmpegBinary(), logger)
	}
	return r
}

// Stage names used for context tagging and log lines.
const (
	StageAnalyze   = "analyze"
	StageEnrich    = "enrich"
	StageAudio     = "audio"
	StageImages    = "images"
	StageSubtitles = "subtitles"
	StageRender    = "render"
	StageStitch    = "stitch"
)

// Run executes every stage in order. Any stage error aborts the run;
// per-scene failures are absorbed inside the stages themselves.
func (r *Runner) Run(ctx context.Context) error {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageAnalyze, r.Analyze},
		{StageEnrich, r.Enrich},
		{StageAudio, r.Audio},
		{StageImages, r.Images},
		{StageSubtitles, r.Subtitles},
		{StageRender, r.Render},
		{StageStitch, r.Stitch},
	}
	for _, stage := range stages {
		stageCtx := services.WithStage(ctx, stage.name)
		started := time.Now()
		r.logger.Info("stage starting", logging.String("stage", stage.name))
		if err := stage.fn(stageCtx); err != nil {
			r.logger.Error("stage failed",
				logging.String("stage", stage.name),
				logging.Error(err))
			return err
		}
		r.logger.Info("stage complete",
			logging.String("stage", stage.name),
			logging.Duration("elapsed", time.Since(started)))
	}
	return nil
}

// loadDocument reads a stage input artifact, mapping a missing file to a
// fatal not-found error and an empty scene list to a validation error.
func (r *Runner) loadDocument(stage string, path string) (scenes.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return scenes.Document{}, services.Wrap(services.ErrNotFound, stage, "load scenes", path, err)
	}
	doc, err := scenes.Load(path)
	if err != nil {
		return scenes.Document{}, services.Wrap(services.ErrValidation, stage, "load scenes", path, err)
	}
	if len(doc.Scenes) == 0 {
		return scenes.Document{}, services.Wrap(services.ErrValidation, stage, "load scenes", "empty scene list in "+path, nil)
	}
	doc.Sort()
	return doc, nil
}

func (r *Runner) workerCount() int {
	if r.cfg.Workflow.Workers > 0 {
		return r.cfg.Workflow.Workers
	}
	return 1
}

// throttle enforces a minimum gap between successive external calls,
// shared across workers.
type throttle struct {
	mu    sync.Mutex
	last  time.Time
	gap   time.Duration
	sleep func(ctx context.Context, d time.Duration)
}

func (t *throttle) wait(ctx context.Context) {
	if t.gap <= 0 {
		return
	}
	t.mu.Lock()
	now := time.Now()
	next := t.last.Add(t.gap)
	if next.Before(now) {
		next = now
	}
	t.last = next
	t.mu.Unlock()

	if delay := time.Until(next); delay > 0 {
		t.sleep(ctx, delay)
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
