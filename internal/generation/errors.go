package generation

import "errors"

var (
	// ErrGenerationFailed - внешний сервис не ответил: сеть, авторизация, лимиты, пустой ответ.
	ErrGenerationFailed = errors.New("AI generation failed")
	// ErrMalformedResponse - ответ получен, но это не JSON ожидаемой формы.
	ErrMalformedResponse = errors.New("malformed AI response")
)

// Сообщения, которые видит пользователь.
const (
	msgUnparsableSuggestions = "Could not parse AI suggestions."
	msgUnparsableStoryboard  = "Could not parse AI storyboard."
	msgEmptyResponse         = "AI returned an empty response."
)

// Error - ошибка генерации. Error() возвращает текст для пользователя без префикса вида,
// вид проверяется через errors.Is(err, ErrGenerationFailed) или errors.Is(err, ErrMalformedResponse).
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

// Is сравнивает с видом ошибки.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap отдает исходную причину (context.Canceled и т.п.).
func (e *Error) Unwrap() error {
	return e.Err
}

// failed оборачивает ошибку транспорта, сохраняя ее текст.
func failed(cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: ErrGenerationFailed, Msg: msg, Err: cause}
}

func malformed(msg string, cause error) *Error {
	return &Error{Kind: ErrMalformedResponse, Msg: msg, Err: cause}
}
