package generation

import (
	"encoding/json"
	"strings"

	"storyboard-server/internal/domain"
)

// cleanAIResponse убирает markdown-обертку ```json ... ``` вокруг ответа.
func cleanAIResponse(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// suggestionsPayload указатели позволяют отличить отсутствующее поле от пустого.
type suggestionsPayload struct {
	Characters *[]domain.Character `json:"characters"`
	Setting    *string             `json:"setting"`
}

// ParseSuggestions разбирает ответ на запрос предложений.
// Отсутствие characters или setting (в том числе null и пустая строка) считается ErrMalformedResponse.
func ParseSuggestions(raw string) (domain.Suggestions, error) {
	var p suggestionsPayload
	if err := json.Unmarshal([]byte(cleanAIResponse(raw)), &p); err != nil {
		return domain.Suggestions{}, malformed(msgUnparsableSuggestions, err)
	}
	if p.Characters == nil || p.Setting == nil || *p.Setting == "" {
		return domain.Suggestions{}, malformed(msgUnparsableSuggestions, nil)
	}
	return domain.Suggestions{Characters: *p.Characters, Setting: *p.Setting}, nil
}

// ParseStoryboard разбирает раскадровку. Верхний уровень обязан быть массивом.
// Порядок и номера сцен не меняются. Элемент с полем неверного типа отклоняет весь ответ,
// частично разобранная раскадровка не возвращается.
func ParseStoryboard(raw string) ([]domain.Scene, error) {
	cleaned := cleanAIResponse(raw)
	if !strings.HasPrefix(cleaned, "[") {
		return nil, malformed(msgUnparsableStoryboard, nil)
	}
	scenes := make([]domain.Scene, 0)
	if err := json.Unmarshal([]byte(cleaned), &scenes); err != nil {
		return nil, malformed(msgUnparsableStoryboard, err)
	}
	return scenes, nil
}
