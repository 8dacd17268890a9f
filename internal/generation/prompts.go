package generation

import (
	"fmt"
	"strings"

	"storyboard-server/internal/domain"
)

// SuggestionsPrompt промт для предложения персонажей и места действия.
func SuggestionsPrompt(topic string, language domain.Language) string {
	var sb strings.Builder
	sb.WriteString("Based on the following topic, suggest two main characters and a setting for a short video.\n")
	fmt.Fprintf(&sb, "Topic: \"%s\"\n", topic)
	fmt.Fprintf(&sb, "Language: %s\n", language)
	sb.WriteString("Provide a creative name and a brief, compelling description for each character. ")
	sb.WriteString("The setting should be evocative and set the tone for the story.")
	return sb.String()
}

// StoryboardPrompt промт для раскадровки. Персонажи берутся из suggestions как есть,
// то есть с правками пользователя.
func StoryboardPrompt(input domain.UserInput, suggestions domain.Suggestions, sceneCount int) string {
	chars := make([]string, 0, len(suggestions.Characters))
	for _, c := range suggestions.Characters {
		chars = append(chars, fmt.Sprintf("%s: %s", c.Name, c.Description))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a detailed storyboard with exactly %d scenes for a %d-second video.\n", sceneCount, input.Duration)
	fmt.Fprintf(&sb, "Topic: \"%s\"\n", input.Topic)
	fmt.Fprintf(&sb, "Language: %s\n", input.Language)
	fmt.Fprintf(&sb, "Characters: %s\n", strings.Join(chars, "; "))
	fmt.Fprintf(&sb, "Setting: %s\n\n", suggestions.Setting)
	sb.WriteString("For each scene, provide:\n")
	sb.WriteString("1. 'scene': The scene number (starting from 1).\n")
	sb.WriteString("2. 'visual_prompt': A concise, vivid description of the visuals for an AI video generator. Focus on action, composition, and mood.\n")
	sb.WriteString("3. 'dialogue': Any dialogue spoken by the characters. If none, write \"None\".\n")
	sb.WriteString("4. 'sound_effects': A brief description of key sound effects. If none, write \"None\".\n\n")
	fmt.Fprintf(&sb, "The story should have a clear beginning, middle, and end, and conclude within the %d scenes.", sceneCount)
	return sb.String()
}
