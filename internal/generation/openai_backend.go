package generation

import (
	"context"
	"encoding/json"
	"net/http"

	"storyboard-server/internal/config"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// envelopeKey - OpenAI-совместимые API принимают только объект в корне схемы,
// поэтому массив заворачивается в {"items": [...]}.
const envelopeKey = "items"

// OpenAIBackend работает с любым OpenAI-совместимым API (OpenAI, Gemini, OpenRouter).
type OpenAIBackend struct {
	client      *openaigo.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIBackend создает бэкенд на go-openai.
func NewOpenAIBackend(cfg *config.Config, logger *zap.Logger) *OpenAIBackend {
	openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	openaiConfig.BaseURL = cfg.AIBaseURL
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}

	logger.Info("OpenAI клиент создан",
		zap.String("base_url", cfg.AIBaseURL),
		zap.String("model", cfg.AIModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &OpenAIBackend{
		client:      openaigo.NewClientWithConfig(openaiConfig),
		model:       cfg.AIModel,
		temperature: float32(cfg.AITemperature),
		logger:      logger.Named("openai"),
	}
}

func (b *OpenAIBackend) Model() string { return b.model }

// Complete отправляет chat completion с response_format json_schema.
func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (string, UsageInfo, error) {
	usage := UsageInfo{}

	schema := req.Schema.Definition
	wrapped := rootType(schema) != "object"
	if wrapped {
		schema = wrapInEnvelope(schema)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: b.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: b.temperature,
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaigo.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      schema,
			},
		},
	})
	if err != nil {
		return "", usage, failed(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", usage, &Error{Kind: ErrGenerationFailed, Msg: msgEmptyResponse}
	}

	usage.PromptTokens = resp.Usage.PromptTokens
	usage.CompletionTokens = resp.Usage.CompletionTokens
	usage.TotalTokens = resp.Usage.TotalTokens

	content := resp.Choices[0].Message.Content
	if wrapped {
		content = unwrapEnvelope(content)
	}
	return content, usage, nil
}

func wrapInEnvelope(def json.RawMessage) json.RawMessage {
	return mustMarshal(map[string]interface{}{
		"type":                 "object",
		"properties":           map[string]json.RawMessage{envelopeKey: def},
		"required":             []string{envelopeKey},
		"additionalProperties": false,
	})
}

// unwrapEnvelope достает items из обертки. Если ответ не обертка, он возвращается без изменений
// и дальше его проверяет парсер.
func unwrapEnvelope(content string) string {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanAIResponse(content)), &env); err != nil {
		return content
	}
	items, ok := env[envelopeKey]
	if !ok {
		return content
	}
	return string(items)
}
