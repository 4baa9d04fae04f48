package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"storyreel/internal/logging"
)

// Renderer is the minimal surface the generator needs from a client.
// It exists so tests can substitute a fake.
type Renderer interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Generator stages scene images on disk, skipping files that already
// exist and pacing successive requests so the inference endpoint is not
// hammered.
type Generator struct {
	client              Renderer
	logger              *slog.Logger
	pauseSeconds        int
	failurePauseSeconds int
	sleep               func(ctx context.Context, d time.Duration)
}

// NewGenerator constructs a generator around the supplied client. The
// failure pause is longer than the regular pause because a failing model
// is usually still loading.
func NewGenerator(client Renderer, logger *slog.Logger, pauseSeconds int, failurePauseSeconds int) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if failurePauseSeconds <= 0 {
		failurePauseSeconds = pauseSeconds
	}
	return &Generator{
		client:              client,
		logger:              logger,
		pauseSeconds:        pauseSeconds,
		failurePauseSeconds: failurePauseSeconds,
		sleep:               sleepContext,
	}
}

// EnsureImage writes the generated image to path unless the file already
// exists. It reports whether a new image was produced.
func (g *Generator) EnsureImage(ctx context.Context, path string, prompt string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		g.logger.Info("image already exists, skipping generation", logging.String("path", path))
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("imagegen: stat %s: %w", path, err)
	}

	data, err := g.client.Generate(ctx, prompt)
	if err != nil {
		g.pauseFor(ctx, g.failurePauseSeconds)
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("imagegen: write %s: %w", path, err)
	}
	g.logger.Info("generated scene image",
		logging.String("path", path),
		logging.Int("bytes", len(data)))
	g.pauseFor(ctx, g.pauseSeconds)
	return true, nil
}

// pauseFor waits between inference requests.
func (g *Generator) pauseFor(ctx context.Context, seconds int) {
	if seconds <= 0 {
		return
	}
	g.sleep(ctx, time.Duration(seconds)*time.Second)
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
