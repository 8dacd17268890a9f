package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storyboard-server/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Generator - два контракта генерации, которыми пользуется контроллер.
type Generator interface {
	// Suggest предлагает двух персонажей и место действия для темы.
	Suggest(ctx context.Context, topic string, language domain.Language) (domain.Suggestions, error)
	// Storyboard разворачивает предложения в сцены. Количество сцен считается по длительности.
	Storyboard(ctx context.Context, input domain.UserInput, suggestions domain.Suggestions) ([]domain.Scene, error)
}

// Client реализует Generator поверх Backend: промты, схемы, разбор и метрики.
// Автоматических повторов нет.
type Client struct {
	backend Backend
	logger  *zap.Logger
}

var _ Generator = (*Client)(nil)

// NewClient создает клиент генерации.
func NewClient(backend Backend, logger *zap.Logger) *Client {
	return &Client{
		backend: backend,
		logger:  logger.Named("generation"),
	}
}

// Suggest реализует Generator.
func (c *Client) Suggest(ctx context.Context, topic string, language domain.Language) (domain.Suggestions, error) {
	if strings.TrimSpace(topic) == "" {
		return domain.Suggestions{}, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}

	raw, err := c.complete(ctx, CompletionRequest{
		Operation: OperationSuggest,
		Prompt:    SuggestionsPrompt(topic, language),
		Schema:    SuggestionsSchema,
	})
	if err != nil {
		return domain.Suggestions{}, err
	}

	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		c.reportMalformed(OperationSuggest, raw, err)
		return domain.Suggestions{}, err
	}
	if len(suggestions.Characters) != 2 {
		c.logger.Warn("AI вернул нестандартное количество персонажей",
			zap.Int("characters", len(suggestions.Characters)))
	}
	return suggestions, nil
}

// Storyboard реализует Generator.
func (c *Client) Storyboard(ctx context.Context, input domain.UserInput, suggestions domain.Suggestions) ([]domain.Scene, error) {
	sceneCount := domain.SceneCount(input.Duration)

	raw, err := c.complete(ctx, CompletionRequest{
		Operation: OperationStoryboard,
		Prompt:    StoryboardPrompt(input, suggestions, sceneCount),
		Schema:    StoryboardSchema,
	})
	if err != nil {
		return nil, err
	}

	scenes, err := ParseStoryboard(raw)
	if err != nil {
		c.reportMalformed(OperationStoryboard, raw, err)
		return nil, err
	}
	if len(scenes) != sceneCount {
		c.logger.Warn("Количество сцен не совпадает с запрошенным",
			zap.Int("expected", sceneCount),
			zap.Int("received", len(scenes)))
	}
	return scenes, nil
}

// complete вызывает бэкенд, пишет метрики и приводит ошибки к ErrGenerationFailed.
func (c *Client) complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.backend.Model()
	op := string(req.Operation)
	log := c.logger.With(zap.String("operation", op), zap.String("model", model))

	log.Info("Отправка запроса к AI", zap.Int("prompt_bytes", len(req.Prompt)))
	start := time.Now()
	raw, usage, err := c.backend.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": model, "operation": op, "status": statusError}).Inc()
		if !errors.Is(err, ErrGenerationFailed) && !errors.Is(err, ErrMalformedResponse) {
			err = failed(err)
		}
		log.Error("Ошибка от AI API", zap.Duration("duration", duration), zap.Error(err))
		return "", err
	}

	aiRequestsTotal.With(prometheus.Labels{"model": model, "operation": op, "status": statusSuccess}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": model, "operation": op}).Observe(duration.Seconds())

	if usage.PromptTokens == 0 {
		usage.PromptTokens = estimateTokens(model, req.Prompt)
	}
	if usage.PromptTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": model, "operation": op}).Observe(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": model, "operation": op}).Observe(float64(usage.CompletionTokens))
	}

	log.Info("Ответ от AI API получен",
		zap.Duration("duration", duration),
		zap.Int("response_bytes", len(raw)),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens))
	return raw, nil
}

func (c *Client) reportMalformed(op Operation, raw string, err error) {
	aiRequestsTotal.With(prometheus.Labels{"model": c.backend.Model(), "operation": string(op), "status": statusMalformed}).Inc()
	aiMalformedResponses.With(prometheus.Labels{"model": c.backend.Model(), "operation": string(op)}).Inc()
	c.logger.Error("Не удалось разобрать ответ AI",
		zap.String("operation", string(op)),
		zap.String("error_type", "malformed_response"),
		zap.Int("payload_bytes", len(raw)),
		zap.Error(err))
}
