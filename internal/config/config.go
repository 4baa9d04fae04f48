package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for pipeline artifacts.
type Paths struct {
	ProjectDir string `toml:"project_dir"`
	LogDir     string `toml:"log_dir"`
}

// LLM contains connection settings for the scene-extraction model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains configuration for the speech-synthesis collaborator.
type TTS struct {
	APIKey         string `toml:"api_key"`
	Endpoint       string `toml:"endpoint"`
	LanguageCode   string `toml:"language_code"`
	VoiceName      string `toml:"voice_name"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImageGen contains configuration for the image-generation collaborator.
type ImageGen struct {
	Token               string `toml:"token"`
	Model               string `toml:"model"`
	BaseURL             string `toml:"base_url"`
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
	RatePauseSeconds    int    `toml:"rate_pause_seconds"`
	FailurePauseSeconds int    `toml:"failure_pause_seconds"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// Narration contains tunables for narration synthesis and duration estimates.
type Narration struct {
	WordsPerSecond float64 `toml:"words_per_second"`
	CloseClause    string  `toml:"close_clause"`
}

// Subtitles contains configuration for subtitle cue generation.
type Subtitles struct {
	MaxWordsPerCue int      `toml:"max_words_per_cue"`
	FillerPhrases  []string `toml:"filler_phrases"`
}

// Render contains configuration for per-scene clip rendering.
type Render struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	FPS         int     `toml:"fps"`
	FadeSeconds float64 `toml:"fade_seconds"`
}

// Workflow contains configuration for pipeline execution behavior.
type Workflow struct {
	Workers          int `toml:"workers"`
	RatePauseSeconds int `toml:"rate_pause_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for storyreel.
//
// Configuration sections by subsystem:
//   - Paths: project and log directories
//   - LLM: scene-extraction model connection settings
//   - TTS: speech-synthesis settings
//   - ImageGen: image-generation settings and rate limits
//   - Narration: speaking-rate constant and narration close clause
//   - Subtitles: cue segmentation limits and filler denylist
//   - Render: target resolution, frame rate, and fade lengths
//   - Workflow: worker-pool sizing and external-call throttling
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	LLM       LLM       `toml:"llm"`
	TTS       TTS       `toml:"tts"`
	ImageGen  ImageGen  `toml:"imagegen"`
	Narration Narration `toml:"narration"`
	Subtitles Subtitles `toml:"subtitles"`
	Render    Render    `toml:"render"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/storyreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("storyreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ScriptPath returns the input script location inside the project directory.
func (c *Config) ScriptPath() string {
	return filepath.Join(c.Paths.ProjectDir, "input", "script")
}

// ScenesPath returns the normalized scene list artifact path.
func (c *Config) ScenesPath() string {
	return filepath.Join(c.OutputDir(), "scenes.json")
}

// EnrichedScenesPath returns the enrichment-stage artifact path.
func (c *Config) EnrichedScenesPath() string {
	return filepath.Join(c.OutputDir(), "scenes_enhanced.json")
}

// AudioScenesPath returns the audio-stage artifact path with measured durations.
func (c *Config) AudioScenesPath() string {
	return filepath.Join(c.OutputDir(), "scenes_with_audio.json")
}

// SubtitlesPath returns the generated subtitle file path.
func (c *Config) SubtitlesPath() string {
	return filepath.Join(c.OutputDir(), "subtitles.srt")
}

// OutputDir returns the directory holding stage artifacts.
func (c *Config) OutputDir() string {
	return filepath.Join(c.Paths.ProjectDir, "output")
}

// AudioDir returns the directory holding per-scene audio files.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.ProjectDir, "audio")
}

// ImagesDir returns the directory holding per-scene images.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Paths.ProjectDir, "images")
}

// SceneVideosDir returns the directory holding rendered per-scene clips.
func (c *Config) SceneVideosDir() string {
	return filepath.Join(c.OutputDir(), "scene_videos")
}

// FinalVideoPath returns the stitched output video path.
func (c *Config) FinalVideoPath() string {
	return filepath.Join(c.OutputDir(), "final_video", "final.mp4")
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.ProjectDir,
		c.Paths.LogDir,
		c.OutputDir(),
		c.AudioDir(),
		c.ImagesDir(),
		c.SceneVideosDir(),
		filepath.Dir(c.FinalVideoPath()),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for rendering and stitching.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probes.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
