package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AspectRatio формат кадра будущего видео.
type AspectRatio string

const (
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioPortrait  AspectRatio = "9:16"
)

// Language язык, на котором AI пишет персонажей, описания и диалоги.
type Language string

const (
	LanguageEnglish    Language = "English"
	LanguageSpanish    Language = "Spanish"
	LanguageFrench     Language = "French"
	LanguageVietnamese Language = "Vietnamese"
	LanguageJapanese   Language = "Japanese"
)

// Границы и значения по умолчанию для формы идеи.
const (
	MinDurationSeconds     = 60
	MaxDurationSeconds     = 300
	DefaultDurationSeconds = 60
	DefaultLanguage        = LanguageEnglish
	DefaultAspectRatio     = AspectRatioLandscape

	// SecondsPerScene сколько секунд видео приходится на одну сцену.
	SecondsPerScene = 10
	// MinScenes минимальное количество сцен в раскадровке.
	MinScenes = 2
)

// SupportedLanguages языки в порядке отображения.
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageVietnamese,
	LanguageJapanese,
}

// SupportedAspectRatios форматы кадра в порядке отображения.
var SupportedAspectRatios = []AspectRatio{AspectRatioLandscape, AspectRatioPortrait}

// ErrInvalidInput - введенные пользователем данные не прошли проверку.
var ErrInvalidInput = errors.New("invalid input data")

// UserInput - идея пользователя.
type UserInput struct {
	Topic       string      `json:"topic"`
	Duration    int         `json:"duration"`
	Language    Language    `json:"language"`
	AspectRatio AspectRatio `json:"aspectRatio"`
}

// Character персонаж истории.
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Suggestions персонажи и место действия, предложенные AI.
// По контракту персонажей ровно два, но тип это не навязывает.
type Suggestions struct {
	Characters []Character `json:"characters"`
	Setting    string      `json:"setting"`
}

// Scene одна сцена раскадровки.
type Scene struct {
	Scene        int    `json:"scene"`
	VisualPrompt string `json:"visual_prompt"`
	Dialogue     string `json:"dialogue"`
	SoundEffects string `json:"sound_effects"`
}

// NoneValue значение dialogue / sound_effects, когда их нет.
const NoneValue = "None"

// IsValidLanguage проверяет, поддерживается ли язык.
func IsValidLanguage(l Language) bool {
	for _, s := range SupportedLanguages {
		if s == l {
			return true
		}
	}
	return false
}

// IsValidAspectRatio проверяет формат кадра.
func IsValidAspectRatio(a AspectRatio) bool {
	return a == AspectRatioLandscape || a == AspectRatioPortrait
}

// Validate проверяет идею перед отправкой в AI.
// Тема обрезается по краям, пустая тема считается ошибкой.
func (in UserInput) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	if in.Duration < MinDurationSeconds || in.Duration > MaxDurationSeconds {
		return fmt.Errorf("%w: duration must be between %d and %d seconds, got %d",
			ErrInvalidInput, MinDurationSeconds, MaxDurationSeconds, in.Duration)
	}
	if !IsValidLanguage(in.Language) {
		return fmt.Errorf("%w: unsupported language '%s'", ErrInvalidInput, in.Language)
	}
	if !IsValidAspectRatio(in.AspectRatio) {
		return fmt.Errorf("%w: unsupported aspect ratio '%s'", ErrInvalidInput, in.AspectRatio)
	}
	return nil
}

// Normalized возвращает копию с обрезанной темой.
func (in UserInput) Normalized() UserInput {
	in.Topic = strings.TrimSpace(in.Topic)
	return in
}

// SceneCount вычисляет количество сцен: max(2, ceil(duration/10)).
// Работает и для длительностей вне диапазона формы.
func SceneCount(durationSeconds int) int {
	n := (durationSeconds + SecondsPerScene - 1) / SecondsPerScene
	if durationSeconds <= 0 {
		n = 0
	}
	if n < MinScenes {
		return MinScenes
	}
	return n
}

// Clone возвращает глубокую копию, чтобы правки не протекали в чужой срез.
func (s Suggestions) Clone() Suggestions {
	out := Suggestions{Setting: s.Setting}
	if s.Characters != nil {
		out.Characters = make([]Character, len(s.Characters))
		copy(out.Characters, s.Characters)
	}
	return out
}

// CharacterNames имена персонажей в исходном порядке.
func (s Suggestions) CharacterNames() []string {
	names := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		names = append(names, c.Name)
	}
	return names
}

// FormatDuration форматирует секунды как "1m 5s".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
