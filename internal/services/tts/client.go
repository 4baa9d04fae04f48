package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings for the Google Cloud TTS API.
type Config struct {
	APIKey         string
	Endpoint       string
	LanguageCode   string
	VoiceName      string
	TimeoutSeconds int
}

// Result is one synthesized narration: raw LINEAR16 WAV bytes plus the
// measured duration in seconds.
type Result struct {
	Audio    []byte
	Duration float64
}

// Client wraps the Google Cloud text:synthesize REST endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a TTS client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Synthesize converts narration text into WAV audio and measures its
// duration from the WAV header.
func (c *Client) Synthesize(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, errors.New("tts synthesize: text required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "tts", "synthesize", "api key required", nil)
	}

	var payload synthesizeRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = c.cfg.LanguageCode
	payload.Voice.Name = c.cfg.VoiceName
	payload.AudioConfig.AudioEncoding = "LINEAR16"

	encoded, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: encode body: %w", err)
	}

	endpoint := c.cfg.Endpoint + "?key=" + c.cfg.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("tts synthesize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, fmt.Errorf("tts synthesize: decode response: %w", err)
	}
	if decoded.Error != nil {
		return Result{}, fmt.Errorf("tts synthesize: api error: %s", decoded.Error.Message)
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: decode audio: %w", err)
	}

	duration, err := WAVDuration(audio)
	if err != nil {
		return Result{}, fmt.Errorf("tts synthesize: measure duration: %w", err)
	}
	return Result{Audio: audio, Duration: duration}, nil
}
