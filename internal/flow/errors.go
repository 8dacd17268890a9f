package flow

import (
	"errors"

	"storyboard-server/internal/domain"
	"storyboard-server/internal/generation"

	"go.uber.org/zap"
)

var (
	// ErrBusy - вызов генерации еще не завершился, триггер проигнорирован.
	ErrBusy = errors.New("generation request is already in progress")
	// ErrInvalidTransition - триггер недоступен с текущего экрана, состояние не изменилось.
	ErrInvalidTransition = errors.New("action is not available on the current screen")
	// ErrClosed - контроллер остановлен.
	ErrClosed = errors.New("flow controller is closed")
)

// Фиксированные сообщения для невыполненных предусловий.
const (
	MsgUserInputMissing      = "User input is missing."
	MsgSuggestionsMissing    = "Suggestions data is missing."
	MsgStoryboardDataMissing = "Data for storyboard is missing."
)

// Сообщения по умолчанию, если у ошибки нет текста.
var fallbackMessages = map[Operation]string{
	OperationSuggest:    "Failed to get suggestions from AI.",
	OperationStoryboard: "Failed to generate storyboard.",
	OperationRegenerate: "Failed to regenerate suggestions.",
}

// ErrorType классификация ошибок для логирования.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeGeneration ErrorType = "generation"
	ErrorTypeMalformed  ErrorType = "malformed_response"
	ErrorTypeInternal   ErrorType = "internal"
)

// classifyError определяет тип ошибки операции.
func classifyError(err error) ErrorType {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrorTypeValidation
	case errors.Is(err, generation.ErrMalformedResponse):
		return ErrorTypeMalformed
	case errors.Is(err, generation.ErrGenerationFailed):
		return ErrorTypeGeneration
	default:
		return ErrorTypeInternal
	}
}

// userMessage текст для экрана ошибки. Никогда не пустой.
func userMessage(op Operation, err error) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	if msg, ok := fallbackMessages[op]; ok {
		return msg
	}
	return "Something went wrong."
}

// reportFailure пишет ошибку в лог с уровнем по типу.
func reportFailure(log *zap.Logger, op Operation, requestID uint64, errType ErrorType, err error) {
	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.String("error_type", string(errType)),
		zap.Uint64("request_id", requestID),
		zap.Error(err),
	}

	switch errType {
	case ErrorTypeValidation:
		log.Warn("Validation error in flow", fields...)
	case ErrorTypeMalformed:
		log.Error("Malformed AI response in flow", fields...)
	case ErrorTypeGeneration:
		log.Error("Generation error in flow", fields...)
	default:
		log.Error("Unexpected error in flow", fields...)
	}
	flowFailuresTotal.WithLabelValues(string(op), string(errType)).Inc()
}
