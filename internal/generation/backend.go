package generation

import (
	"context"
	"fmt"

	"storyboard-server/internal/config"

	"go.uber.org/zap"
)

// Operation - какой контракт генерации выполняется.
type Operation string

const (
	OperationSuggest    Operation = "suggest"
	OperationStoryboard Operation = "storyboard"
)

// CompletionRequest один запрос к внешнему сервису: промт и схема structured output.
type CompletionRequest struct {
	Operation Operation
	Prompt    string
	Schema    Schema
}

// UsageInfo использование токенов.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Backend - граница с сервисом генерации текста.
// Complete возвращает текст, который ожидается валидным JSON по схеме.
// Ошибки транспорта оборачиваются в ErrGenerationFailed.
type Backend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, UsageInfo, error)
	Model() string
}

// NewBackend создает бэкенд по типу из конфигурации.
func NewBackend(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.AIClientType {
	case config.AIClientTypeOpenAI:
		logger.Info("Используется реализация AI клиента: OpenAI")
		return NewOpenAIBackend(cfg, logger), nil
	case config.AIClientTypeOllama:
		logger.Info("Используется реализация AI клиента: Ollama")
		return NewOllamaBackend(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.AIClientType)
	}
}
