// Package ai talks to the Gemini generateContent API for personalized
// tips and free-form electricity Q&A.
//
// Every entry point degrades to rule-based content when the backend is
// unconfigured, unreachable, or returns an unusable response; callers
// never see a hard failure on the conversational path.
package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"context"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.0-flash"
	defaultHTTPTimeout = 30 * time.Second

	// rateLimitBackoff is the fixed delay before the single retry
	// permitted on a 429 response.
	rateLimitBackoff = 2 * time.Second
)

// EnvAPIKey is the environment variable holding the Gemini API key.
const EnvAPIKey = "GEMINI_API_KEY"

// Client errors.
var (
	ErrNotConfigured = errors.New("gemini api key not configured")
	ErrRateLimited   = errors.New("gemini api rate limited")
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

// Client is a minimal Gemini generateContent client.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	backoff time.Duration
	http    *http.Client
}

// NewClient creates a client with the given API key. An empty key yields
// a nil client; callers treat nil as "AI unavailable" and fall back.
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		backoff: rateLimitBackoff,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// NewClientFromEnv creates a client from the GEMINI_API_KEY environment
// variable.
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return NewClient(apiKey), nil
}

// WithBaseURL overrides the API host, used by tests against httptest
// servers.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithBackoff overrides the rate-limit retry delay, used by tests.
func (c *Client) WithBackoff(d time.Duration) *Client {
	c.backoff = d
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// firstText extracts the first candidate's text, or "".
func (r *generateResponse) firstText() string {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// Generate sends prompt to the model and returns the first candidate's
// text. On a 429 it waits the fixed backoff and retries exactly once;
// a second 429 surfaces ErrRateLimited. An HTTP success with no text
// surfaces ErrEmptyResponse.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", ErrNotConfigured
	}

	text, err := c.generateOnce(ctx, prompt, maxTokens)
	if !errors.Is(err, ErrRateLimited) {
		return text, err
	}

	select {
	case <-time.After(c.backoff):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return c.generateOnce(ctx, prompt, maxTokens)
}

func (c *Client) generateOnce(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		Config: genConfig{
			Temperature:     0.7,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: maxTokens,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	var out generateResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&out); decodeErr != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", decodeErr)
	}

	text := out.firstText()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
