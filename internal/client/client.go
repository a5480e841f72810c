// Package client talks to the generate proxy on behalf of the terminal app.
// It owns the Basic auth header and turns proxy failures into AppErrors.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/credentials"
	"github.com/pageza/recipegen/internal/types"
)

const (
	// DefaultBaseURL is where a locally started proxy listens
	DefaultBaseURL = "http://localhost:8080"

	// GeneratePath is the proxy route
	GeneratePath = "/api/generate"

	MsgPasswordRequired = "Password is required to use this app."
	MsgUnauthorized     = "Unauthorized. Check your password and try again."
	msgEmptyReply       = "Gemini proxy returned an empty response."
	msgUnreachable      = "Could not reach the recipe proxy."

	maxReplyBytes = 4 << 20
)

// Option configures a ProxyClient
type Option func(*ProxyClient)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *ProxyClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(c *ProxyClient) {
		if log != nil {
			c.log = log
		}
	}
}

// ProxyClient posts prompts to the proxy with the stored credential
type ProxyClient struct {
	baseURL string
	http    *http.Client
	store   credentials.Store
	log     *zap.Logger

	mu            sync.Mutex
	authorization string
}

// NewProxyClient creates a client for the proxy at baseURL
func NewProxyClient(baseURL string, store credentials.Store, opts ...Option) *ProxyClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &ProxyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		// generation can take a while; the proxy has no deadline of its own
		http:  &http.Client{Timeout: 2 * time.Minute},
		store: store,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncodePassword returns the stored form of password, base64(":"+password)
func EncodePassword(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(":" + password))
}

// SetPassword stores password for this and later runs
func (c *ProxyClient) SetPassword(password string) error {
	if password == "" {
		return types.NewAuthError(MsgPasswordRequired)
	}

	encoded := EncodePassword(password)
	if err := c.store.Save(encoded); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	c.mu.Lock()
	c.authorization = "Basic " + encoded
	c.mu.Unlock()
	return nil
}

// HasCredential reports whether a password is cached or stored
func (c *ProxyClient) HasCredential() bool {
	_, err := c.authorizationHeader()
	return err == nil
}

// ClearCredential forgets the cached and stored password
func (c *ProxyClient) ClearCredential() error {
	c.mu.Lock()
	c.authorization = ""
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (c *ProxyClient) authorizationHeader() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authorization != "" {
		return c.authorization, nil
	}

	saved, ok, err := c.store.Load()
	if err != nil {
		c.log.Warn("credential store unreadable", zap.Error(err))
		return "", types.NewAuthError(MsgPasswordRequired)
	}
	if !ok {
		return "", types.NewAuthError(MsgPasswordRequired)
	}

	c.authorization = "Basic " + saved
	return c.authorization, nil
}

type proxyReply struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// GenerateJSON posts promptText to the proxy and returns the model's text.
// A 401 clears the stored credential so the next call asks for a new one.
func (c *ProxyClient) GenerateJSON(ctx context.Context, promptText string) (string, error) {
	authorization, err := c.authorizationHeader()
	if err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(types.GenerateRequest{PromptText: &promptText})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("proxy request failed", zap.Error(err))
		return "", types.NewUpstreamError(0, msgUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", types.NewUpstreamError(resp.StatusCode, msgUnreachable, err)
	}

	var reply proxyReply
	parseErr := json.Unmarshal(body, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			if err := c.ClearCredential(); err != nil {
				c.log.Warn("could not clear credential", zap.Error(err))
			}
			return "", types.NewAuthError(MsgUnauthorized)
		}

		message := fmt.Sprintf("Request failed (%d).", resp.StatusCode)
		if parseErr == nil && reply.Error != "" {
			message = reply.Error
		}
		c.log.Info("proxy returned error", zap.Int("status", resp.StatusCode), zap.String("message", message))
		return "", types.NewUpstreamError(resp.StatusCode, message, nil)
	}

	if parseErr != nil || reply.Text == "" {
		return "", types.NewUpstreamError(resp.StatusCode, msgEmptyReply, parseErr)
	}
	return reply.Text, nil
}
