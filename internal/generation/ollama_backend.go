package generation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyboard-server/internal/config"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// OllamaBackend работает с локальной Ollama через нативный API.
type OllamaBackend struct {
	client      *api.Client
	model       string
	timeout     time.Duration
	temperature float64
	logger      *zap.Logger
}

// NewOllamaBackend создает бэкенд. Base URL указывается без суффикса /v1.
func NewOllamaBackend(cfg *config.Config, logger *zap.Logger) (*OllamaBackend, error) {
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.AIBaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}

	logger.Info("Ollama клиент создан",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &OllamaBackend{
		client:      api.NewClient(parsedURL, &http.Client{Timeout: cfg.AITimeout}),
		model:       cfg.AIModel,
		timeout:     cfg.AITimeout,
		temperature: cfg.AITemperature,
		logger:      logger.Named("ollama"),
	}, nil
}

func (b *OllamaBackend) Model() string { return b.model }

// Complete выполняет chat без стриминга, схема передается в format.
func (b *OllamaBackend) Complete(ctx context.Context, req CompletionRequest) (string, UsageInfo, error) {
	usage := UsageInfo{}
	stream := false

	chatReq := &api.ChatRequest{
		Model:    b.model,
		Messages: []api.Message{{Role: "user", Content: req.Prompt}},
		Stream:   &stream,
		Format:   req.Schema.Definition,
		Options: map[string]interface{}{
			"temperature": b.temperature,
		},
	}

	requestCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		requestCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var resp api.ChatResponse
	var content strings.Builder
	err := b.client.Chat(requestCtx, chatReq, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		resp = r
		return nil
	})
	if err != nil {
		return "", usage, failed(err)
	}
	if content.Len() == 0 {
		return "", usage, &Error{Kind: ErrGenerationFailed, Msg: msgEmptyResponse}
	}

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount

	b.logger.Debug("Ollama ответ получен",
		zap.String("operation", string(req.Operation)),
		zap.String("done_reason", resp.DoneReason),
		zap.Int("response_bytes", content.Len()))

	return content.String(), usage, nil
}
