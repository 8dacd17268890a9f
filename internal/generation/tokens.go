package generation

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var (
	encodingsMu sync.Mutex
	encodings   = map[string]*tiktoken.Tiktoken{}
)

// estimateTokens примерный подсчет токенов, когда бэкенд не вернул usage.
// Для неизвестных tiktoken моделей (gemini, llama) используется cl100k_base.
// Возвращает 0, если токенизатор недоступен.
func estimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	tke := encodingFor(model)
	if tke == nil {
		return 0
	}
	return len(tke.Encode(text, nil, nil))
}

func encodingFor(model string) *tiktoken.Tiktoken {
	encodingsMu.Lock()
	defer encodingsMu.Unlock()

	if tke, ok := encodings[model]; ok {
		return tke
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			tke = nil
		}
	}
	// nil тоже кэшируем, чтобы не повторять загрузку словаря на каждый запрос
	encodings[model] = tke
	return tke
}
