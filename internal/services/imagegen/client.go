package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 120 * time.Second

// Config holds the Hugging Face inference API settings.
type Config struct {
	Token          string
	BaseURL        string
	Model          string
	Width          int
	Height         int
	TimeoutSeconds int
}

// Client issues text-to-image requests against the Hugging Face
// inference endpoint for a fixed model.
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

// NewClient constructs an image generation client.
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

type generateRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		Width  int `json:"width,omitempty"`
		Height int `json:"height,omitempty"`
	} `json:"parameters"`
}

// Generate renders one image for the prompt and returns the raw image
// bytes as produced by the model.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("imagegen: prompt required")
	}
	if strings.TrimSpace(c.cfg.Token) == "" {
		return nil, errors.New("imagegen: api token required")
	}

	var payload generateRequest
	payload.Inputs = prompt
	payload.Parameters.Width = c.cfg.Width
	payload.Parameters.Height = c.cfg.Height
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("imagegen: encode body: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("imagegen: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagegen: http %d: %s", resp.StatusCode, summarize(body))
	}
	if len(body) == 0 {
		return nil, errors.New("imagegen: empty image response")
	}
	return body, nil
}

func summarize(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
