// Package tiktok lists the recent videos of a TikTok creator through a feed API.
package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

const defaultHTTPTimeout = 30 * time.Second

// Sentinel errors returned by FetchUserVideos.
var (
	ErrNotFound    = errors.New("tiktok: user not found")
	ErrRateLimited = errors.New("tiktok: rate limit exceeded")
)

// Config describes the feed API endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
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

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// Client implements contract.FeedClient over HTTP.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	userAgent string
	http      *http.Client
}

var _ contract.FeedClient = &Client{}

// NewClient creates a Client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("tiktok: feed base url is required")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("tiktok: parse base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	c := &Client{
		baseURL:   baseURL,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		userAgent: "voicepersona",
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type videosResponse struct {
	Videos []schema.FeedVideo `json:"videos"`
}

// FetchUserVideos returns up to count of the creator's most recent videos.
func (c *Client) FetchUserVideos(ctx context.Context, handle string, count int) ([]schema.FeedVideo, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, errors.New("tiktok: handle is required")
	}
	endpoint := c.baseURL.JoinPath("users", handle, "videos")
	if count > 0 {
		endpoint.RawQuery = url.Values{"count": {strconv.Itoa(count)}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tiktok: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: @%s", ErrNotFound, handle)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tiktok: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tiktok: decode response: %w", err)
	}
	videos := payload.Videos
	if count > 0 && len(videos) > count {
		videos = videos[:count]
	}
	if videos == nil {
		videos = []schema.FeedVideo{}
	}
	return videos, nil
}
