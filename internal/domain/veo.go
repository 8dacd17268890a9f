package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VeoPrompt - JSON-документ для внешнего видеогенератора, собирается по одной сцене.
type VeoPrompt struct {
	Prompt         string `json:"prompt"`
	StyleReference string `json:"style_reference"`
	Dialogue       string `json:"dialogue"`
	SoundEffects   string `json:"sound_effects"`
}

// BuildVeoPrompt собирает промт для сцены из идеи и подтвержденных предложений.
func BuildVeoPrompt(scene Scene, input UserInput, suggestions Suggestions) VeoPrompt {
	return VeoPrompt{
		Prompt: scene.VisualPrompt,
		StyleReference: fmt.Sprintf("A cinematic %s video about \"%s\" with characters %s, set in %s.",
			input.AspectRatio, input.Topic, strings.Join(suggestions.CharacterNames(), " and "), suggestions.Setting),
		Dialogue:     scene.Dialogue,
		SoundEffects: scene.SoundEffects,
	}
}

// JSON возвращает документ с отступом в два пробела, в таком виде его копирует пользователь.
func (p VeoPrompt) JSON() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal veo prompt: %w", err)
	}
	return string(data), nil
}
