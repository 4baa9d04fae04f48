package pipeline

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"storyreel/internal/enrich"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/scenes"
	"storyreel/internal/services"
	"storyreel/internal/services/imagegen"
	"storyreel/internal/subtitles"
)

// Analyze reads the project script, extracts scenes through the model,
// normalizes the untrusted output, and writes scenes.json. An empty
// normalized result aborts the run since no downstream stage can proceed.
func (r *Runner) Analyze(ctx context.Context) error {
	scriptPath := r.cfg.ScriptPath()
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, StageAnalyze, "read script", scriptPath, err)
	}
	script := strings.TrimSpace(string(data))
	if script == "" {
		return services.Wrap(services.ErrValidation, StageAnalyze, "read script", "script is empty", nil)
	}

	r.throttle.wait(ctx)
	raw, err := r.extract.ExtractScenes(ctx, script)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, StageAnalyze, "extract scenes", "", err)
	}

	doc := scenes.NewNormalizer(r.logger).Normalize(raw)
	if len(doc.Scenes) == 0 {
		return services.Wrap(services.ErrValidation, StageAnalyze, "normalize scenes", "model output yielded no scenes", nil)
	}
	if err := scenes.Save(r.cfg.ScenesPath(), doc); err != nil {
		return services.Wrap(services.ErrConfiguration, StageAnalyze, "save scenes", r.cfg.ScenesPath(), err)
	}
	r.logger.Info("scene extraction complete", logging.Int("scenes", len(doc.Scenes)))
	return nil
}

// Enrich adds narration text, duration estimates, voice styles, and
// background audio tags, then writes scenes_enhanced.json.
func (r *Runner) Enrich(ctx context.Context) error {
	doc, err := r.loadDocument(StageEnrich, r.cfg.ScenesPath())
	if err != nil {
		return err
	}
	enriched := enrich.New(enrich.SettingsFromConfig(r.cfg)).EnrichDocument(doc)
	if err := scenes.Save(r.cfg.EnrichedScenesPath(), enriched); err != nil {
		return services.Wrap(services.ErrConfiguration, StageEnrich, "save scenes", r.cfg.EnrichedScenesPath(), err)
	}
	r.logger.Info("scene enrichment complete", logging.Int("scenes", len(enriched.Scenes)))
	return nil
}

// Audio synthesizes narration per scene and replaces the estimated
// duration with the measured one. Scenes whose audio file already exists
// are re-measured instead of re-synthesized, so reruns are idempotent.
// Per-scene failures clear the audio fields and the batch continues; a
// fatal synthesis error (missing configuration, which would fail every
// scene identically) aborts the stage.
func (r *Runner) Audio(ctx context.Context) error {
	doc, err := r.loadDocument(StageAudio, r.cfg.EnrichedScenesPath())
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		synthN  int
		reusedN int
		failedN int
		fatal   error
	)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workerCount(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcome, sceneErr := r.sceneAudio(ctx, &doc.Scenes[i])
				mu.Lock()
				switch outcome {
				case audioSynthesized:
					synthN++
				case audioReused:
					reusedN++
				default:
					failedN++
				}
				if sceneErr != nil && fatal == nil {
					fatal = sceneErr
				}
				mu.Unlock()
			}
		}()
	}
	for i := range doc.Scenes {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if fatal != nil {
		return fatal
	}

	// Workers wrote disjoint indices; re-sort before persisting.
	doc.Sort()
	if err := scenes.Save(r.cfg.AudioScenesPath(), doc); err != nil {
		return services.Wrap(services.ErrConfiguration, StageAudio, "save scenes", r.cfg.AudioScenesPath(), err)
	}
	r.logger.Info("audio generation complete",
		logging.Int("synthesized", synthN),
		logging.Int("reused", reusedN),
		logging.Int("failed", failedN))
	return nil
}

type audioOutcome int

const (
	audioFailed audioOutcome = iota
	audioSynthesized
	audioReused
)

func (r *Runner) sceneAudio(ctx context.Context, scene *scenes.Scene) (audioOutcome, error) {
	ctx = services.WithSceneID(ctx, scene.SceneID)
	name := scenes.ArtifactName(scene.SceneID)
	relPath := path.Join("audio", name+".wav")
	absPath := filepath.Join(r.cfg.AudioDir(), name+".wav")

	if _, err := os.Stat(absPath); err == nil {
		duration, probeErr := r.measureAudio(ctx, absPath)
		if probeErr == nil && duration > 0 {
			scene.AudioFile = relPath
			scene.AudioDuration = duration
			r.logger.Info("audio already exists, re-measured",
				logging.Int("scene_id", scene.SceneID),
				logging.Float64("duration", duration))
			return audioReused, nil
		}
		r.logger.Warn("existing audio unreadable, re-synthesizing",
			logging.Int("scene_id", scene.SceneID),
			logging.Error(probeErr))
	}

	text := strings.TrimSpace(scene.Narration)
	if text == "" {
		text = strings.TrimSpace(scene.Description)
	}
	if text == "" {
		text = strings.TrimSpace(scene.Text)
	}
	if text == "" {
		r.logger.Warn("scene has no narration text",
			logging.Int("scene_id", scene.SceneID))
		scene.AudioFile = ""
		scene.AudioDuration = 0
		return audioFailed, nil
	}

	r.throttle.wait(ctx)
	result, err := r.synth.Synthesize(ctx, text)
	if err != nil {
		r.logger.Error("speech synthesis failed",
			logging.Int("scene_id", scene.SceneID),
			logging.Error(err))
		scene.AudioFile = ""
		scene.AudioDuration = 0
		if services.IsFatal(err) {
			return audioFailed, err
		}
		return audioFailed, nil
	}
	if err := os.WriteFile(absPath, result.Audio, 0o644); err != nil {
		r.logger.Error("write audio failed",
			logging.Int("scene_id", scene.SceneID),
			logging.Error(err))
		scene.AudioFile = ""
		scene.AudioDuration = 0
		return audioFailed, nil
	}
	scene.AudioFile = relPath
	scene.AudioDuration = result.Duration
	r.logger.Info("narration synthesized",
		logging.Int("scene_id", scene.SceneID),
		logging.Float64("duration", result.Duration))
	return audioSynthesized, nil
}

func (r *Runner) measureAudio(ctx context.Context, audioPath string) (float64, error) {
	var (
		result ffprobe.Result
		err    error
	)
	if r.probe != nil {
		result, err = ffprobe.InspectWith(ctx, r.probe, r.cfg.FFprobeBinary(), audioPath)
	} else {
		result, err = ffprobe.Inspect(ctx, r.cfg.FFprobeBinary(), audioPath)
	}
	if err != nil {
		return 0, err
	}
	return result.DurationSeconds(), nil
}

// Images stages one key image per scene. Existing files short-circuit,
// and a failed generation only skips that scene.
func (r *Runner) Images(ctx context.Context) error {
	source := r.cfg.AudioScenesPath()
	if _, err := os.Stat(source); err != nil {
		source = r.cfg.EnrichedScenesPath()
	}
	doc, err := r.loadDocument(StageImages, source)
	if err != nil {
		return err
	}

	var created, skipped, failed int
	for _, scene := range doc.Scenes {
		sceneCtx := services.WithSceneID(ctx, scene.SceneID)
		imgPath := filepath.Join(r.cfg.ImagesDir(), scenes.ArtifactName(scene.SceneID)+".png")
		wasCreated, err := r.images.EnsureImage(sceneCtx, imgPath, imagegen.BuildPrompt(scene))
		if err != nil {
			failed++
			r.logger.Error("image generation failed",
				logging.Int("scene_id", scene.SceneID),
				logging.Error(err))
			continue
		}
		if wasCreated {
			created++
		} else {
			skipped++
		}
	}
	r.logger.Info("image generation complete",
		logging.Int("created", created),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed))
	return nil
}

// Subtitles converts measured audio durations into the SRT cue timeline.
func (r *Runner) Subtitles(ctx context.Context) error {
	doc, err := r.loadDocument(StageSubtitles, r.cfg.AudioScenesPath())
	if err != nil {
		return err
	}
	builder := subtitles.NewBuilder(subtitles.Options{
		MaxWordsPerCue: r.cfg.Subtitles.MaxWordsPerCue,
		FillerPhrases:  r.cfg.Subtitles.FillerPhrases,
	}, r.logger)
	cues := builder.Build(doc)
	if err := subtitles.WriteFile(r.cfg.SubtitlesPath(), cues); err != nil {
		return services.Wrap(services.ErrConfiguration, StageSubtitles, "write srt", r.cfg.SubtitlesPath(), err)
	}
	r.logger.Info("subtitles written",
		logging.Int("cues", len(cues)),
		logging.String("path", r.cfg.SubtitlesPath()))
	if err := subtitles.ValidateFile(r.cfg.SubtitlesPath()); err != nil {
		r.logger.Warn("subtitle validation failed",
			logging.String("path", r.cfg.SubtitlesPath()),
			logging.Error(err))
	} else {
		r.logger.Info("subtitle file validated",
			logging.String("path", r.cfg.SubtitlesPath()))
	}
	return nil
}

// Render produces one clip per scene with the effect/fallback policy.
func (r *Runner) Render(ctx context.Context) error {
	doc, err := r.loadDocument(StageRender, r.cfg.AudioScenesPath())
	if err != nil {
		return err
	}
	if r.store != nil {
		ids := make([]int, 0, len(doc.Scenes))
		for _, scene := range doc.Scenes {
			ids = append(ids, scene.SceneID)
		}
		if err := r.store.InitScenes(ctx, ids); err != nil {
			r.logger.Warn("run store init failed", logging.Error(err))
		}
	}
	_, err = r.renderer.RenderDocument(ctx, doc, r.cfg.Paths.ProjectDir, r.cfg.ImagesDir(), r.cfg.SceneVideosDir())
	return err
}

// Stitch concatenates the rendered clips and burns in the subtitles.
func (r *Runner) Stitch(ctx context.Context) error {
	if err := r.stitcher.Stitch(ctx, r.cfg.SceneVideosDir(), r.cfg.SubtitlesPath(), r.cfg.FinalVideoPath()); err != nil {
		return err
	}
	r.logger.Info("pipeline finished",
		logging.String("title", r.stitcher.DisplayTitle(r.cfg.ScriptPath())),
		logging.String("output", r.cfg.FinalVideoPath()))
	return nil
}
