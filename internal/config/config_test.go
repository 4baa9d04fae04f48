package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if resolved != missing {
		t.Fatalf("resolved path = %q, want %q", resolved, missing)
	}
	if cfg.Narration.WordsPerSecond != 2.2 {
		t.Fatalf("words_per_second = %v, want 2.2", cfg.Narration.WordsPerSecond)
	}
	if cfg.Subtitles.MaxWordsPerCue != 7 {
		t.Fatalf("max_words_per_cue = %d, want 7", cfg.Subtitles.MaxWordsPerCue)
	}
	if cfg.Render.Width != 1920 || cfg.Render.Height != 1080 {
		t.Fatalf("render resolution = %dx%d, want 1920x1080", cfg.Render.Width, cfg.Render.Height)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
project_dir = "` + filepath.Join(dir, "project") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[narration]
words_per_second = 3.0
close_clause = ", fading out."

[subtitles]
max_words_per_cue = 5

[workflow]
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Narration.WordsPerSecond != 3.0 {
		t.Fatalf("words_per_second = %v, want 3.0", cfg.Narration.WordsPerSecond)
	}
	if cfg.Narration.CloseClause != ", fading out." {
		t.Fatalf("close_clause = %q", cfg.Narration.CloseClause)
	}
	if cfg.Subtitles.MaxWordsPerCue != 5 {
		t.Fatalf("max_words_per_cue = %d, want 5", cfg.Subtitles.MaxWordsPerCue)
	}
	if cfg.Workflow.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Workflow.Workers)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported log format")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestArtifactPathsDeriveFromProjectDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ProjectDir = "/tmp/reel"

	cases := map[string]string{
		cfg.ScriptPath():         "/tmp/reel/input/script",
		cfg.ScenesPath():         "/tmp/reel/output/scenes.json",
		cfg.EnrichedScenesPath(): "/tmp/reel/output/scenes_enhanced.json",
		cfg.AudioScenesPath():    "/tmp/reel/output/scenes_with_audio.json",
		cfg.SubtitlesPath():      "/tmp/reel/output/subtitles.srt",
		cfg.SceneVideosDir():     "/tmp/reel/output/scene_videos",
		cfg.FinalVideoPath():     "/tmp/reel/output/final_video/final.mp4",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("artifact path = %q, want %q", got, want)
		}
	}
}

func TestEnsureDirectoriesCreatesLayout(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.ProjectDir = filepath.Join(base, "project")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.OutputDir(), cfg.AudioDir(), cfg.ImagesDir(), cfg.SceneVideosDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
