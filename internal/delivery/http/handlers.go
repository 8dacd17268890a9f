package http

import (
	"errors"
	"net/http"
	"strconv"

	"storyboard-server/internal/domain"
	"storyboard-server/internal/flow"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FlowController - триггеры и чтение состояния, которые доступны view.
type FlowController interface {
	State() flow.Snapshot
	SubmitIdea(input domain.UserInput) (flow.Snapshot, error)
	AcceptSuggestions(edited domain.Suggestions) (flow.Snapshot, error)
	RegenerateSuggestions() (flow.Snapshot, error)
	BackToIdea() (flow.Snapshot, error)
	BackToReview() (flow.Snapshot, error)
	Reset() flow.Snapshot
}

// Handler HTTP обработчик экранов раскадровки.
type Handler struct {
	flow   FlowController
	logger *zap.Logger
}

// New создает новый экземпляр обработчика
func New(ctrl FlowController, logger *zap.Logger) *Handler {
	return &Handler{
		flow:   ctrl,
		logger: logger.Named("http"),
	}
}

// RegisterRoutes регистрирует маршруты API.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api")
	{
		api.GET("/state", h.getState)
		api.GET("/options", h.getOptions)

		api.POST("/idea", h.submitIdea)
		api.POST("/suggestions/accept", h.acceptSuggestions)
		api.POST("/suggestions/regenerate", h.regenerateSuggestions)
		api.POST("/back/idea", h.backToIdea)
		api.POST("/back/review", h.backToReview)
		api.POST("/reset", h.reset)

		api.GET("/storyboard/veo-prompts", h.listVeoPrompts)
		api.GET("/storyboard/scenes/:scene/veo-prompt", h.getVeoPrompt)
	}
}

func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.flow.State())
}

func (h *Handler) getOptions(c *gin.Context) {
	c.JSON(http.StatusOK, newOptionsResponse())
}

func (h *Handler) submitIdea(c *gin.Context) {
	var req submitIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.flow.SubmitIdea(req.toDomain())
	h.respondTrigger(c, snap, err)
}

func (h *Handler) acceptSuggestions(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.flow.AcceptSuggestions(req.toDomain())
	h.respondTrigger(c, snap, err)
}

func (h *Handler) regenerateSuggestions(c *gin.Context) {
	snap, err := h.flow.RegenerateSuggestions()
	h.respondTrigger(c, snap, err)
}

func (h *Handler) backToIdea(c *gin.Context) {
	snap, err := h.flow.BackToIdea()
	h.respondTrigger(c, snap, err)
}

func (h *Handler) backToReview(c *gin.Context) {
	snap, err := h.flow.BackToReview()
	h.respondTrigger(c, snap, err)
}

func (h *Handler) reset(c *gin.Context) {
	c.JSON(http.StatusOK, h.flow.Reset())
}

func (h *Handler) listVeoPrompts(c *gin.Context) {
	snap, ok := h.storyboardState(c)
	if !ok {
		return
	}
	prompts := make([]veoPromptResponse, 0, len(snap.Scenes))
	for _, scene := range snap.Scenes {
		resp, err := newVeoPromptResponse(scene, snap)
		if err != nil {
			h.internalError(c, err)
			return
		}
		prompts = append(prompts, resp)
	}
	c.JSON(http.StatusOK, prompts)
}

func (h *Handler) getVeoPrompt(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("scene"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "scene must be an integer"})
		return
	}
	snap, ok := h.storyboardState(c)
	if !ok {
		return
	}
	// при повторяющихся номерах берется первая сцена
	for _, scene := range snap.Scenes {
		if scene.Scene != number {
			continue
		}
		resp, err := newVeoPromptResponse(scene, snap)
		if err != nil {
			h.internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "scene not found"})
}

// storyboardState возвращает состояние, только если открыт экран Storyboard.
func (h *Handler) storyboardState(c *gin.Context) (flow.Snapshot, bool) {
	snap := h.flow.State()
	if snap.Screen != flow.ScreenStoryboard || snap.Input == nil || snap.Suggestions == nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "storyboard is not ready", State: &snap})
		return snap, false
	}
	return snap, true
}

// respondTrigger пишет ответ триггера: 202 если начался вызов генерации, 409 если триггер проигнорирован.
func (h *Handler) respondTrigger(c *gin.Context, snap flow.Snapshot, err error) {
	switch {
	case err == nil && snap.Screen == flow.ScreenLoading:
		c.JSON(http.StatusAccepted, snap)
	case err == nil:
		c.JSON(http.StatusOK, snap)
	case errors.Is(err, flow.ErrBusy), errors.Is(err, flow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), State: &snap})
	case errors.Is(err, flow.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Debug("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}
