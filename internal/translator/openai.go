package translator

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ppt-translator/internal/logger"
	"ppt-translator/internal/types"
)

// OpenAIClient translates through any OpenAI-compatible chat completions
// endpoint (Ollama's /v1, vLLM, LM Studio, or the real thing) using the eino
// OpenAI component.
type OpenAIClient struct {
	chatModel model.BaseChatModel
	modelName string
	baseURL   string
	timeout   time.Duration
}

// NewOpenAIClient creates a chat-completions backed client. host is the
// server root; the /v1 suffix is appended when missing. apiKey may be empty
// for local servers that don't check it.
func NewOpenAIClient(ctx context.Context, host, modelName, apiKey string, timeout time.Duration) (*OpenAIClient, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	baseURL := normalizeBaseURL(host)

	cfg := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: apiKey,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "创建模型客户端失败", err)
	}

	logger.Info("openai-compatible backend initialized",
		logger.String("baseURL", baseURL), logger.String("model", modelName))
	return &OpenAIClient{
		chatModel: cm,
		modelName: modelName,
		baseURL:   baseURL,
		timeout:   timeout,
	}, nil
}

// normalizeBaseURL ensures the base URL ends with /v1
func normalizeBaseURL(host string) string {
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return host
	}
	if strings.HasSuffix(host, "/v1") {
		return host
	}
	return host + "/v1"
}

// Translate implements Client via a system+user chat exchange.
func (c *OpenAIClient) Translate(ctx context.Context, text string, from, to types.Lang) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt(from, to)),
		schema.UserMessage(text),
	})
	if err != nil {
		return "", types.NewAppError(types.ErrAPICall, "翻译请求失败", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", types.NewAppErrorWithDetails(types.ErrTranslation, "模型返回空译文", text, nil)
	}

	cleaned := Clean(resp.Content, c.modelName, from, to)
	if strings.TrimSpace(cleaned) == "" {
		return "", types.NewAppErrorWithDetails(types.ErrTranslation, "模型返回空译文", text, nil)
	}
	return cleaned, nil
}

// TestConnection asks the model for a fixed one-word reply, the cheapest
// request that proves the endpoint actually serves the configured model.
func (c *OpenAIClient) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage("Reply with only the word 'ok', nothing else."),
	})
	if err != nil {
		logger.Error("connection test failed", err, logger.String("baseURL", c.baseURL))
		return types.NewAppError(types.ErrNetwork, "无法连接推理服务", err)
	}
	if resp == nil || !strings.Contains(strings.ToLower(resp.Content), "ok") {
		got := ""
		if resp != nil {
			got = resp.Content
		}
		return types.NewAppErrorWithDetails(types.ErrAPICall, "模型响应异常", got, nil)
	}
	return nil
}
