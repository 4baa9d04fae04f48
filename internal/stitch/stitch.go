package stitch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/logging"
	"storyreel/internal/scenes"
	"storyreel/internal/services"
)

// CommandRunner executes ffmpeg. Tests substitute a fake.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// Stitcher concatenates rendered scene clips into the final narrated
// video with burned-in subtitles.
type Stitcher struct {
	ffmpegBin string
	run       CommandRunner
	logger    *slog.Logger
	titler    cases.Caser
}

// Option customizes a stitcher.
type Option func(*Stitcher)

// WithCommandRunner injects the process runner used for ffmpeg.
func WithCommandRunner(run CommandRunner) Option {
	return func(s *Stitcher) {
		if run != nil {
			s.run = run
		}
	}
}

// New constructs a stitcher.
func New(ffmpegBin string, logger *slog.Logger, opts ...Option) *Stitcher {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stitcher{
		ffmpegBin: ffmpegBin,
		run:       defaultRunner,
		logger:    logger,
		titler:    cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectClips lists the scene clips under dir ordered by numeric scene
// id. Ordering is numeric, never lexical, so scene_10 follows scene_9.
func CollectClips(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scene videos: %w", err)
	}
	type clip struct {
		id   int
		path string
	}
	var clips []clip
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mp4") {
			continue
		}
		id, ok := scenes.ParseArtifactID(entry.Name())
		if !ok {
			continue
		}
		clips = append(clips, clip{id: id, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].id < clips[j].id })
	paths := make([]string, 0, len(clips))
	for _, c := range clips {
		paths = append(paths, c.path)
	}
	return paths, nil
}

// WriteConcatList writes the ffmpeg concat demuxer list for the clips.
func WriteConcatList(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		b.WriteString("file '")
		b.WriteString(filepath.ToSlash(clip))
		b.WriteString("'\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// Stitch concatenates the clips under sceneVideosDir and burns the SRT
// subtitles into the final video at finalPath.
func (s *Stitcher) Stitch(ctx context.Context, sceneVideosDir string, subtitlePath string, finalPath string) error {
	clips, err := CollectClips(sceneVideosDir)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "stitch", "collect clips", sceneVideosDir, err)
	}
	if len(clips) == 0 {
		return services.Wrap(services.ErrNotFound, "stitch", "collect clips", "no scene clips in "+sceneVideosDir, nil)
	}
	if _, err := os.Stat(subtitlePath); err != nil {
		return services.Wrap(services.ErrNotFound, "stitch", "load subtitles", subtitlePath, err)
	}
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "stitch", "ensure final dir", filepath.Dir(finalPath), err)
	}

	listPath := filepath.Join(filepath.Dir(finalPath), "scene_list.txt")
	if err := WriteConcatList(listPath, clips); err != nil {
		return services.Wrap(services.ErrExternalTool, "stitch", "write concat list", listPath, err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-vf", "subtitles=" + filepath.ToSlash(subtitlePath),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-c:a", "aac",
		"-movflags", "+faststart",
		finalPath,
	}
	s.logger.Info("stitching final video",
		logging.Int("clips", len(clips)),
		logging.String("output", finalPath))
	if _, err := s.run(ctx, s.ffmpegBin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "stitch", "ffmpeg concat", finalPath, err)
	}
	s.logger.Info("final video created", logging.String("output", finalPath))
	return nil
}

// DisplayTitle derives a human readable title from a script filename,
// for the completion log line and the status view.
func (s *Stitcher) DisplayTitle(scriptPath string) string {
	base := filepath.Base(scriptPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled"
	}
	return s.titler.String(base)
}
