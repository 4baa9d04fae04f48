package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTTS()
	c.normalizeImageGen()
	c.normalizeNarration()
	c.normalizeSubtitles()
	c.normalizeRender()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectDir) == "" {
		c.Paths.ProjectDir = defaultProjectDir
	}
	if c.Paths.ProjectDir, err = expandPath(c.Paths.ProjectDir); err != nil {
		return fmt.Errorf("paths.project_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeTTS() {
	if c.TTS.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_CLOUD_API_KEY"); ok {
			c.TTS.APIKey = value
		}
	}
	c.TTS.Endpoint = strings.TrimSpace(c.TTS.Endpoint)
	if c.TTS.Endpoint == "" {
		c.TTS.Endpoint = defaultTTSEndpoint
	}
	if strings.TrimSpace(c.TTS.LanguageCode) == "" {
		c.TTS.LanguageCode = defaultTTSLanguageCode
	}
	if strings.TrimSpace(c.TTS.VoiceName) == "" {
		c.TTS.VoiceName = defaultTTSVoiceName
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeImageGen() {
	if c.ImageGen.Token == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.ImageGen.Token = value
		}
	}
	c.ImageGen.BaseURL = strings.TrimSpace(c.ImageGen.BaseURL)
	if c.ImageGen.BaseURL == "" {
		c.ImageGen.BaseURL = defaultImageBaseURL
	}
	if strings.TrimSpace(c.ImageGen.Model) == "" {
		c.ImageGen.Model = defaultImageModel
	}
	if c.ImageGen.Width <= 0 {
		c.ImageGen.Width = defaultImageWidth
	}
	if c.ImageGen.Height <= 0 {
		c.ImageGen.Height = defaultImageHeight
	}
	if c.ImageGen.RatePauseSeconds <= 0 {
		c.ImageGen.RatePauseSeconds = defaultImageRatePause
	}
	if c.ImageGen.FailurePauseSeconds <= 0 {
		c.ImageGen.FailurePauseSeconds = defaultImageFailurePause
	}
	if c.ImageGen.TimeoutSeconds <= 0 {
		c.ImageGen.TimeoutSeconds = defaultImageTimeoutSeconds
	}
}

func (c *Config) normalizeNarration() {
	if c.Narration.WordsPerSecond <= 0 {
		c.Narration.WordsPerSecond = defaultWordsPerSecond
	}
	if c.Narration.CloseClause == "" {
		c.Narration.CloseClause = defaultCloseClause
	}
}

func (c *Config) normalizeSubtitles() {
	if c.Subtitles.MaxWordsPerCue <= 0 {
		c.Subtitles.MaxWordsPerCue = defaultMaxWordsPerCue
	}
	if c.Subtitles.FillerPhrases == nil {
		c.Subtitles.FillerPhrases = defaultFillerPhrases()
	}
}

func (c *Config) normalizeRender() {
	if c.Render.Width <= 0 {
		c.Render.Width = defaultRenderWidth
	}
	if c.Render.Height <= 0 {
		c.Render.Height = defaultRenderHeight
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultRenderFPS
	}
	if c.Render.FadeSeconds <= 0 {
		c.Render.FadeSeconds = defaultFadeSeconds
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.RatePauseSeconds < 0 {
		c.Workflow.RatePauseSeconds = defaultRatePauseSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
