package http

import (
	"storyboard-server/internal/domain"
	"storyboard-server/internal/flow"
)

// ErrorResponse - стандартная структура для ответа об ошибке.
// State заполняется, когда триггер отклонен, чтобы клиент мог перерисовать экран.
type ErrorResponse struct {
	Error string         `json:"error"`
	State *flow.Snapshot `json:"state,omitempty"`
}

type submitIdeaRequest struct {
	Topic       string `json:"topic"`
	Duration    int    `json:"duration"`
	Language    string `json:"language"`
	AspectRatio string `json:"aspectRatio"`
}

func (r submitIdeaRequest) toDomain() domain.UserInput {
	return domain.UserInput{
		Topic:       r.Topic,
		Duration:    r.Duration,
		Language:    domain.Language(r.Language),
		AspectRatio: domain.AspectRatio(r.AspectRatio),
	}
}

type characterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type suggestionsRequest struct {
	Characters []characterRequest `json:"characters" binding:"required"`
	Setting    string             `json:"setting"`
}

func (r suggestionsRequest) toDomain() domain.Suggestions {
	out := domain.Suggestions{
		Characters: make([]domain.Character, 0, len(r.Characters)),
		Setting:    r.Setting,
	}
	for _, ch := range r.Characters {
		out.Characters = append(out.Characters, domain.Character{Name: ch.Name, Description: ch.Description})
	}
	return out
}

type optionsResponse struct {
	Languages          []domain.Language    `json:"languages"`
	AspectRatios       []domain.AspectRatio `json:"aspect_ratios"`
	MinDuration        int                  `json:"min_duration"`
	MaxDuration        int                  `json:"max_duration"`
	DefaultDuration    int                  `json:"default_duration"`
	DefaultDurationFmt string               `json:"default_duration_label"`
	DefaultLanguage    domain.Language      `json:"default_language"`
	DefaultAspectRatio domain.AspectRatio   `json:"default_aspect_ratio"`
	LoadingMessage     string               `json:"loading_message"`
}

func newOptionsResponse() optionsResponse {
	return optionsResponse{
		Languages:          domain.SupportedLanguages,
		AspectRatios:       domain.SupportedAspectRatios,
		MinDuration:        domain.MinDurationSeconds,
		MaxDuration:        domain.MaxDurationSeconds,
		DefaultDuration:    domain.DefaultDurationSeconds,
		DefaultDurationFmt: domain.FormatDuration(domain.DefaultDurationSeconds),
		DefaultLanguage:    domain.DefaultLanguage,
		DefaultAspectRatio: domain.DefaultAspectRatio,
		LoadingMessage:     flow.LoadingMessage,
	}
}

type veoPromptResponse struct {
	Scene  int              `json:"scene"`
	Prompt domain.VeoPrompt `json:"prompt"`
	// Document - форматированный JSON для копирования
	Document string `json:"document"`
}

func newVeoPromptResponse(scene domain.Scene, snap flow.Snapshot) (veoPromptResponse, error) {
	prompt := domain.BuildVeoPrompt(scene, *snap.Input, *snap.Suggestions)
	doc, err := prompt.JSON()
	if err != nil {
		return veoPromptResponse{}, err
	}
	return veoPromptResponse{Scene: scene.Scene, Prompt: prompt, Document: doc}, nil
}
