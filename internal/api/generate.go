package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/gemini"
	"github.com/pageza/recipegen/internal/metrics"
	"github.com/pageza/recipegen/internal/middleware"
	"github.com/pageza/recipegen/internal/types"
)

// maxBodyBytes bounds the generate request body
const maxBodyBytes = 1 << 20

const (
	msgMissingKey    = "Missing GEMINI_API_KEY on server."
	msgInvalidJSON   = "Invalid JSON body."
	msgPromptMissing = "promptText is required."
	msgEmptyReply    = "Gemini returned an empty response."
	msgUpstreamError = "Gemini request failed."
)

// Generator produces the raw JSON text for a prompt
type Generator interface {
	GenerateJSON(ctx context.Context, promptText string) (string, error)
}

// GenerateHandler forwards authenticated prompts to the AI gateway
type GenerateHandler struct {
	generator Generator
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewGenerateHandler creates a handler. A nil generator means the server has
// no Gemini key and every request fails with 500.
func NewGenerateHandler(generator Generator, m *metrics.Metrics, log *zap.Logger) *GenerateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerateHandler{
		generator: generator,
		metrics:   m,
		log:       log,
	}
}

// Generate handles POST /api/generate. Authentication has already happened
// in middleware.
func (h *GenerateHandler) Generate(c *gin.Context) {
	if h.generator == nil {
		h.fail(c, types.NewConfigError(msgMissingKey))
		return
	}

	promptText, appErr := readPrompt(c)
	if appErr != nil {
		h.fail(c, appErr)
		return
	}

	start := time.Now()
	text, err := h.generator.GenerateJSON(c.Request.Context(), promptText)
	if err != nil {
		appErr := classifyGatewayError(err)
		h.observe(appErr, time.Since(start))
		h.fail(c, appErr)
		return
	}
	h.observe(nil, time.Since(start))

	c.JSON(http.StatusOK, types.GenerateResponse{Text: text})
}

// readPrompt decodes {"promptText": "..."}. An empty body counts as {}.
// A JSON null body is rejected as invalid, other non-object values as a
// missing prompt.
func readPrompt(c *gin.Context) (string, *types.AppError) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		return "", types.NewValidationError(msgInvalidJSON)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = []byte("{}")
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return "", types.NewValidationError(msgInvalidJSON)
	}

	fields, ok := body.(map[string]any)
	if !ok {
		return "", types.NewValidationError(msgPromptMissing)
	}
	promptText, ok := fields["promptText"].(string)
	if !ok || strings.TrimSpace(promptText) == "" {
		return "", types.NewValidationError(msgPromptMissing)
	}
	return promptText, nil
}

func classifyGatewayError(err error) *types.AppError {
	var transportErr *gemini.TransportError
	switch {
	case errors.As(err, &transportErr):
		return types.NewUpstreamError(transportErr.Status, transportErr.Error(), err)
	case errors.Is(err, gemini.ErrEmptyResponse):
		return types.NewUpstreamError(http.StatusBadGateway, msgEmptyReply, err)
	default:
		return types.NewUpstreamError(http.StatusBadGateway, msgUpstreamError, err)
	}
}

func (h *GenerateHandler) observe(appErr *types.AppError, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	switch {
	case appErr == nil:
		h.metrics.ObserveUpstream(metrics.OutcomeSuccess, elapsed)
	case appErr.Message == msgEmptyReply:
		h.metrics.ObserveUpstream(metrics.OutcomeEmpty, elapsed)
	default:
		h.metrics.ObserveUpstream(metrics.OutcomeError, elapsed)
	}
}

func (h *GenerateHandler) fail(c *gin.Context, appErr *types.AppError) {
	fields := []zap.Field{
		zap.String("code", string(appErr.Code)),
		zap.Int("status", appErr.StatusCode()),
		zap.String("detail", appErr.Detail()),
		zap.String("request_id", middleware.GetRequestID(c)),
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.log.Error("generate failed", fields...)
	} else {
		h.log.Info("generate rejected", fields...)
	}
	c.JSON(appErr.StatusCode(), types.ErrorResponse{Error: appErr.Message})
}
