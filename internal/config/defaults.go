package config

const (
	defaultProjectDir          = "~/storyreel"
	defaultLogDir              = "~/.local/share/storyreel/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "allenai/molmo-2-8b:free"
	defaultLLMReferer          = "https://github.com/storyreel/storyreel"
	defaultLLMTitle            = "Storyreel Scene Analyzer"
	defaultLLMTimeoutSeconds   = 120
	defaultTTSEndpoint         = "https://texttospeech.googleapis.com/v1/text:synthesize"
	defaultTTSLanguageCode     = "en-US"
	defaultTTSVoiceName        = "en-US-Neural2-D"
	defaultTTSTimeoutSeconds   = 60
	defaultImageModel          = "stabilityai/stable-diffusion-xl-base-1.0"
	defaultImageBaseURL        = "https://api-inference.huggingface.co/models"
	defaultImageWidth          = 1024
	defaultImageHeight         = 1024
	defaultImageRatePause      = 8
	defaultImageFailurePause   = 30
	defaultImageTimeoutSeconds = 180
	defaultWordsPerSecond      = 2.2
	defaultCloseClause         = ", unfolding quietly."
	defaultMaxWordsPerCue      = 7
	defaultRenderWidth         = 1920
	defaultRenderHeight        = 1080
	defaultRenderFPS           = 30
	defaultFadeSeconds         = 1.0
	defaultWorkers             = 2
	defaultRatePauseSeconds    = 2
)

func defaultFillerPhrases() []string {
	return []string{"you know", "sort of", "kind of", "um", "uh"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectDir: defaultProjectDir,
			LogDir:     defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			Endpoint:       defaultTTSEndpoint,
			LanguageCode:   defaultTTSLanguageCode,
			VoiceName:      defaultTTSVoiceName,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		ImageGen: ImageGen{
			Model:               defaultImageModel,
			BaseURL:             defaultImageBaseURL,
			Width:               defaultImageWidth,
			Height:              defaultImageHeight,
			RatePauseSeconds:    defaultImageRatePause,
			FailurePauseSeconds: defaultImageFailurePause,
			TimeoutSeconds:      defaultImageTimeoutSeconds,
		},
		Narration: Narration{
			WordsPerSecond: defaultWordsPerSecond,
			CloseClause:    defaultCloseClause,
		},
		Subtitles: Subtitles{
			MaxWordsPerCue: defaultMaxWordsPerCue,
			FillerPhrases:  defaultFillerPhrases(),
		},
		Render: Render{
			Width:       defaultRenderWidth,
			Height:      defaultRenderHeight,
			FPS:         defaultRenderFPS,
			FadeSeconds: defaultFadeSeconds,
		},
		Workflow: Workflow{
			Workers:          defaultWorkers,
			RatePauseSeconds: defaultRatePauseSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
