// Package gemini wraps the Gemini generateContent endpoint. It is the only
// code that holds the provider API key.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// Temperature is fixed so idea lists stay varied between regenerations
	Temperature = 0.8
)

// ErrEmptyResponse means the provider answered without any candidate text
// or with a body that could not be read
var ErrEmptyResponse = errors.New("gemini: empty response")

// TransportError is a non-success HTTP status from the provider
type TransportError struct {
	Status int
	// Message is the provider's error.message, empty when it sent none
	Message string
}

func (e *TransportError) Error() string {
	if e.Message == "" {
		return "Gemini request failed."
	}
	return "Gemini request failed. " + e.Message
}

// Request is the generateContent request body
type Request struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Content is a single turn of the conversation
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a content turn
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig tunes sampling and output format
type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures the Client
type Option func(*Client)

// WithModel overrides the default model name
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at another host, used by tests
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client talks to the Gemini API
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a Gemini client for the given API key
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateJSON sends promptText asking for a JSON reply and returns the
// first candidate's text. It makes exactly one request.
func (c *Client) GenerateJSON(ctx context.Context, promptText string) (string, error) {
	body := Request{
		Contents: []Content{{Parts: []Part{{Text: promptText}}}},
		GenerationConfig: GenerationConfig{
			Temperature:      Temperature,
			ResponseMimeType: "application/json",
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("gemini request", zap.String("model", c.model), zap.Int("prompt_bytes", len(promptText)))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorResponse
		// an unparseable error body just leaves the message empty
		_ = json.Unmarshal(respBody, &payload)
		c.log.Warn("gemini request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("message", payload.Error.Message))
		return "", &TransportError{Status: resp.StatusCode, Message: payload.Error.Message}
	}

	var result response
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.log.Warn("gemini response unreadable", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 ||
		result.Candidates[0].Content.Parts[0].Text == "" {
		return "", ErrEmptyResponse
	}

	text := result.Candidates[0].Content.Parts[0].Text
	c.log.Debug("gemini reply", zap.Int("chars", len(text)))
	return text, nil
}
