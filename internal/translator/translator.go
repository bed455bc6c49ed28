// Package translator provides clients for translating slide text through a
// locally hosted LLM inference server.
package translator

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

	"ppt-translator/internal/logger"
	"ppt-translator/internal/types"
)

const (
	// DefaultHost is the default inference server address
	DefaultHost = "http://localhost:2342"
	// DefaultModel is the default model to use for translation
	DefaultModel = "qwen:7b"
	// DefaultTimeout is the default HTTP client timeout for translation calls
	DefaultTimeout = 120 * time.Second
)

// Client translates a single piece of text between the supported languages.
type Client interface {
	// Translate translates text from one language to the other. The returned
	// string is cleaned of model chatter; an empty source is returned as is.
	Translate(ctx context.Context, text string, from, to types.Lang) (string, error)
	// TestConnection probes whether the inference server is reachable.
	TestConnection(ctx context.Context) error
}

// Func adapts a plain function to the Client interface. Used by tests and by
// the pipeline, which only needs the Translate half.
type Func func(ctx context.Context, text string, from, to types.Lang) (string, error)

// Translate implements Client
func (f Func) Translate(ctx context.Context, text string, from, to types.Lang) (string, error) {
	return f(ctx, text, from, to)
}

// TestConnection implements Client
func (f Func) TestConnection(ctx context.Context) error { return nil }

// OllamaClient talks to an Ollama server's native generate API.
type OllamaClient struct {
	host           string
	model          string
	client         *http.Client
	retryOnTimeout bool
}

// generateRequest is the /api/generate request body
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the /api/generate response body
type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaClient creates a client for the given host and model.
// Empty host/model fall back to the defaults; a zero timeout falls back to
// DefaultTimeout.
func NewOllamaClient(host, model string, timeout time.Duration, retryOnTimeout bool) *OllamaClient {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &OllamaClient{
		host:           strings.TrimSuffix(host, "/"),
		model:          model,
		client:         &http.Client{Timeout: timeout},
		retryOnTimeout: retryOnTimeout,
	}
}

// Host returns the server address the client talks to.
func (c *OllamaClient) Host() string { return c.host }

// Model returns the model name used for translation.
func (c *OllamaClient) Model() string { return c.model }

// TestConnection probes the server's version endpoint.
func (c *OllamaClient) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/version", nil)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("connection test failed", err, logger.String("host", c.host))
		return types.NewAppError(types.ErrNetwork, "无法连接推理服务", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("connection test returned error status", nil, logger.Int("statusCode", resp.StatusCode))
		return types.NewAppErrorWithDetails(types.ErrNetwork, "推理服务响应异常",
			fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	logger.Info("connection test successful", logger.String("host", c.host))
	return nil
}

// Translate sends one text unit to the server and returns the cleaned
// translation. A timed-out request is re-sent once when retryOnTimeout is
// set; any other failure is returned immediately.
func (c *OllamaClient) Translate(ctx context.Context, text string, from, to types.Lang) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := BuildPrompt(c.model, text, from, to)

	raw, err := c.generate(ctx, prompt)
	if err != nil && c.retryOnTimeout && isTimeout(err) {
		logger.Warn("translation request timed out, retrying once", logger.String("model", c.model))
		raw, err = c.generate(ctx, prompt)
	}
	if err != nil {
		return "", err
	}

	cleaned := Clean(raw, c.model, from, to)
	if strings.TrimSpace(cleaned) == "" {
		logger.Warn("model returned empty translation", logger.String("text", text))
		return "", types.NewAppErrorWithDetails(types.ErrTranslation, "模型返回空译文", text, nil)
	}
	return cleaned, nil
}

// generate performs a single /api/generate round trip.
func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "翻译请求失败", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "读取响应失败", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("generate returned error status", nil,
			logger.Int("statusCode", resp.StatusCode))
		return "", types.NewAppErrorWithDetails(types.ErrAPICall, "推理服务返回错误",
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", types.NewAppError(types.ErrAPICall, "响应格式错误", err)
	}
	if genResp.Error != "" {
		return "", types.NewAppErrorWithDetails(types.ErrAPICall, "推理服务返回错误", genResp.Error, nil)
	}

	return genResp.Response, nil
}

// isTimeout reports whether err represents an HTTP client timeout.
func isTimeout(err error) bool {
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		err = appErr.Cause
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
