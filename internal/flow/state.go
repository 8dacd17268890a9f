package flow

import "storyboard-server/internal/domain"

// Screen - текущий экран приложения.
type Screen string

const (
	ScreenIdea       Screen = "idea"
	ScreenLoading    Screen = "loading"
	ScreenReview     Screen = "review"
	ScreenStoryboard Screen = "storyboard"
	ScreenError      Screen = "error"
)

// Operation - какой вызов генерации сейчас выполняется.
type Operation string

const (
	OperationSuggest    Operation = "suggest"
	OperationRegenerate Operation = "regenerate"
	OperationStoryboard Operation = "storyboard"
)

// LoadingMessage текст экрана загрузки.
const LoadingMessage = "AI Director is thinking..."

// screenState - закрытый вариант экрана. Данные, нужные только одному экрану,
// живут внутри его варианта, поэтому невозможные комбинации не выражаются.
type screenState interface {
	screen() Screen
}

type ideaScreen struct{}

type loadingScreen struct {
	requestID uint64
	op        Operation
}

type reviewScreen struct{}

type storyboardScreen struct {
	scenes []domain.Scene
}

type errorScreen struct {
	message string
}

func (ideaScreen) screen() Screen       { return ScreenIdea }
func (loadingScreen) screen() Screen    { return ScreenLoading }
func (reviewScreen) screen() Screen     { return ScreenReview }
func (storyboardScreen) screen() Screen { return ScreenStoryboard }
func (errorScreen) screen() Screen      { return ScreenError }

// Snapshot - копия состояния только для чтения. Ее рендерит view и рассылает websocket.
type Snapshot struct {
	Screen      Screen              `json:"screen"`
	Input       *domain.UserInput   `json:"input"`
	Suggestions *domain.Suggestions `json:"suggestions"`
	Scenes      []domain.Scene      `json:"scenes"`
	Error       string              `json:"error"`
	RequestID   uint64              `json:"request_id,omitempty"`
	Operation   Operation           `json:"operation,omitempty"`
	Message     string              `json:"message,omitempty"`
}

func buildSnapshot(s screenState, input *domain.UserInput, suggestions *domain.Suggestions) Snapshot {
	snap := Snapshot{
		Screen: s.screen(),
		Scenes: []domain.Scene{},
	}
	if input != nil {
		in := *input
		snap.Input = &in
	}
	if suggestions != nil {
		sg := suggestions.Clone()
		snap.Suggestions = &sg
	}

	switch v := s.(type) {
	case loadingScreen:
		snap.RequestID = v.requestID
		snap.Operation = v.op
		snap.Message = LoadingMessage
	case storyboardScreen:
		snap.Scenes = append(snap.Scenes, v.scenes...)
	case errorScreen:
		snap.Error = v.message
	}
	return snap
}
