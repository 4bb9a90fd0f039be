// Package transcribe calls a speech-to-text service that transcribes public video URLs.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

const defaultHTTPTimeout = 2 * time.Minute

// ErrRateLimited is returned when the service answers 429.
var ErrRateLimited = errors.New("transcribe: rate limit exceeded")

// Config describes the transcription endpoint.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string // optional BCP 47 hint
	Timeout  time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// Client implements contract.Transcriber over HTTP. It does not retry.
type Client struct {
	endpoint *url.URL
	apiKey   string
	language string
	http     *http.Client
}

var _ contract.Transcriber = &Client{}

// NewClient creates a Client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("transcribe: base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("transcribe: parse base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	c := &Client{
		endpoint: baseURL.JoinPath("transcriptions"),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		language: strings.TrimSpace(cfg.Language),
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type transcriptionRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
}

// Transcribe submits the video URL and waits for the transcript. A service-side failure
// is reported in the result; transport and protocol failures are returned as errors.
func (c *Client) Transcribe(ctx context.Context, videoURL string) (schema.TranscriptionResult, error) {
	body, err := json.Marshal(transcriptionRequest{URL: videoURL, Language: c.language})
	if err != nil {
		return schema.TranscriptionResult{}, fmt.Errorf("transcribe: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return schema.TranscriptionResult{}, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return schema.TranscriptionResult{}, fmt.Errorf("transcribe: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return schema.TranscriptionResult{}, ErrRateLimited
	}
	// Unprocessable videos come back as a result with an error message.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusUnprocessableEntity {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return schema.TranscriptionResult{}, fmt.Errorf("transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result schema.TranscriptionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return schema.TranscriptionResult{}, fmt.Errorf("transcribe: decode response: %w", err)
	}
	if result.Success && strings.TrimSpace(result.Transcript) == "" {
		return schema.TranscriptionResult{Success: false, Error: "empty transcript"}, nil
	}
	return result, nil
}
