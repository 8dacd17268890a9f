package flow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storyboard-server/internal/domain"
	"storyboard-server/internal/generation"

	"go.uber.org/zap"
)

// Listener получает снимок после каждого перехода.
// Вызовы последовательные, в порядке переходов. Синхронно обращаться к контроллеру из слушателя нельзя.
type Listener interface {
	StateChanged(Snapshot)
}

// ListenerFunc адаптер функции к Listener.
type ListenerFunc func(Snapshot)

func (f ListenerFunc) StateChanged(s Snapshot) { f(s) }

// Option настройка контроллера.
type Option func(*Controller)

// WithCallTimeout ограничивает время одного вызова генерации. 0 - без ограничения.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) { c.callTimeout = d }
}

// WithListener подписывает слушателя при создании.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, l) }
}

// Controller - конечный автомат экранов. Единственный владелец состояния.
// В каждый момент выполняется не больше одного вызова генерации.
type Controller struct {
	gen    generation.Generator
	logger *zap.Logger

	mu          sync.Mutex
	screen      screenState
	input       *domain.UserInput
	suggestions *domain.Suggestions
	lastID      uint64
	closed      bool

	notifyMu  sync.Mutex
	listeners []Listener

	callTimeout time.Duration
	baseCtx     context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewController создает контроллер на экране Idea.
func NewController(gen generation.Generator, logger *zap.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		gen:     gen,
		logger:  logger.Named("flow"),
		screen:  ideaScreen{},
		baseCtx: ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddListener подписывает слушателя.
func (c *Controller) AddListener(l Listener) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State возвращает текущий снимок.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SubmitIdea сохраняет идею и запрашивает предложения. Доступно с экрана Idea.
// Невалидная идея переводит на экран ошибки без вызова генерации.
func (c *Controller) SubmitIdea(input domain.UserInput) (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked("submit_idea", ScreenIdea); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	input = input.Normalized()
	if err := input.Validate(); err != nil {
		reportFailure(c.logger, OperationSuggest, 0, ErrorTypeValidation, err)
		c.enterLocked(errorScreen{message: userMessage(OperationSuggest, err)})
		return c.unlockAndNotify()
	}

	c.input = &input
	id := c.beginLocked(OperationSuggest)
	c.runSuggest(id, OperationSuggest, input)
	return c.unlockAndNotify()
}

// AcceptSuggestions сохраняет правки пользователя и запрашивает раскадровку. Доступно с экрана Review.
func (c *Controller) AcceptSuggestions(edited domain.Suggestions) (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked("accept_suggestions", ScreenReview); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	accepted := edited.Clone()
	c.suggestions = &accepted
	if c.input == nil {
		reportFailure(c.logger, OperationStoryboard, 0, ErrorTypeValidation, fmt.Errorf("%w: %s", domain.ErrInvalidInput, MsgUserInputMissing))
		c.enterLocked(errorScreen{message: MsgUserInputMissing})
		return c.unlockAndNotify()
	}

	id := c.beginLocked(OperationStoryboard)
	c.runStoryboard(id, *c.input, accepted.Clone())
	return c.unlockAndNotify()
}

// RegenerateSuggestions повторно запрашивает предложения для сохраненной идеи.
// Правки пользователя при успехе отбрасываются.
func (c *Controller) RegenerateSuggestions() (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked("regenerate_suggestions", ScreenReview); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	if c.input == nil {
		reportFailure(c.logger, OperationRegenerate, 0, ErrorTypeValidation, fmt.Errorf("%w: %s", domain.ErrInvalidInput, MsgUserInputMissing))
		c.enterLocked(errorScreen{message: MsgUserInputMissing})
		return c.unlockAndNotify()
	}

	id := c.beginLocked(OperationRegenerate)
	c.runSuggest(id, OperationRegenerate, *c.input)
	return c.unlockAndNotify()
}

// BackToIdea отбрасывает предложения. Идея сохраняется.
func (c *Controller) BackToIdea() (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked("back_to_idea", ScreenReview); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.suggestions = nil
	c.enterLocked(ideaScreen{})
	return c.unlockAndNotify()
}

// BackToReview отбрасывает сцены, предложения остаются.
func (c *Controller) BackToReview() (Snapshot, error) {
	c.mu.Lock()
	if err := c.guardLocked("back_to_review", ScreenStoryboard); err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.enterReviewLocked()
	return c.unlockAndNotify()
}

// Reset очищает все и возвращает на экран Idea. Доступен с любого экрана, в том числе Loading:
// результат незавершенного вызова после этого будет отброшен.
func (c *Controller) Reset() Snapshot {
	c.mu.Lock()
	c.input = nil
	c.suggestions = nil
	c.enterLocked(ideaScreen{})
	snap, _ := c.unlockAndNotify()
	return snap
}

// Wait блокируется, пока не завершатся все вызовы генерации.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close отменяет незавершенный вызов и ждет его завершения или истечения ctx.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Flow controller stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ожидание завершения генерации прервано: %w", ctx.Err())
	}
}

// guardLocked проверяет, что триггер допустим на текущем экране.
func (c *Controller) guardLocked(trigger string, allowed Screen) error {
	var err error
	switch {
	case c.closed:
		err = ErrClosed
	case c.screen.screen() == ScreenLoading:
		err = ErrBusy
	case c.screen.screen() != allowed:
		err = ErrInvalidTransition
	default:
		return nil
	}
	flowIgnoredTriggersTotal.WithLabelValues(trigger, reasonLabel(err)).Inc()
	c.logger.Debug("Trigger ignored",
		zap.String("trigger", trigger),
		zap.String("screen", string(c.screen.screen())),
		zap.Error(err))
	return err
}

func reasonLabel(err error) string {
	switch err {
	case ErrBusy:
		return "busy"
	case ErrClosed:
		return "closed"
	default:
		return "invalid_transition"
	}
}

// beginLocked переводит в Loading с новым идентификатором запроса.
func (c *Controller) beginLocked(op Operation) uint64 {
	c.lastID++
	id := c.lastID
	c.enterLocked(loadingScreen{requestID: id, op: op})
	c.wg.Add(1)
	return id
}

func (c *Controller) callContext() (context.Context, context.CancelFunc) {
	if c.callTimeout > 0 {
		return context.WithTimeout(c.baseCtx, c.callTimeout)
	}
	return context.WithCancel(c.baseCtx)
}

func (c *Controller) runSuggest(id uint64, op Operation, input domain.UserInput) {
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.callContext()
		defer cancel()

		suggestions, err := c.gen.Suggest(ctx, input.Topic, input.Language)
		c.settle(id, op, err, func() {
			c.suggestions = &suggestions
			c.enterReviewLocked()
		})
	}()
}

func (c *Controller) runStoryboard(id uint64, input domain.UserInput, suggestions domain.Suggestions) {
	go func() {
		defer c.wg.Done()
		ctx, cancel := c.callContext()
		defer cancel()

		scenes, err := c.gen.Storyboard(ctx, input, suggestions)
		c.settle(id, OperationStoryboard, err, func() {
			c.enterStoryboardLocked(scenes)
		})
	}()
}

// settle применяет результат вызова, если он все еще ожидается.
// Иначе результат молча отбрасывается.
func (c *Controller) settle(id uint64, op Operation, err error, commit func()) {
	c.mu.Lock()
	pending, ok := c.screen.(loadingScreen)
	if !ok || pending.requestID != id {
		c.mu.Unlock()
		flowStaleResponsesTotal.Inc()
		c.logger.Info("Discarding stale generation result",
			zap.Uint64("request_id", id),
			zap.String("operation", string(op)),
			zap.Bool("failed", err != nil))
		return
	}

	if err != nil {
		reportFailure(c.logger, op, id, classifyError(err), err)
		c.enterLocked(errorScreen{message: userMessage(op, err)})
	} else {
		commit()
	}
	c.unlockAndNotify()
}

// enterReviewLocked входит в Review только при наличии предложений.
func (c *Controller) enterReviewLocked() {
	if c.suggestions == nil {
		c.logger.Error("Review entered without suggestions", zap.String("error_type", string(ErrorTypeInternal)))
		c.enterLocked(errorScreen{message: MsgSuggestionsMissing})
		return
	}
	c.enterLocked(reviewScreen{})
}

// enterStoryboardLocked входит в Storyboard только при наличии идеи и предложений.
func (c *Controller) enterStoryboardLocked(scenes []domain.Scene) {
	if c.input == nil || c.suggestions == nil {
		c.logger.Error("Storyboard entered without input or suggestions", zap.String("error_type", string(ErrorTypeInternal)))
		c.enterLocked(errorScreen{message: MsgStoryboardDataMissing})
		return
	}
	c.enterLocked(storyboardScreen{scenes: scenes})
}

func (c *Controller) enterLocked(s screenState) {
	if e, ok := s.(errorScreen); ok && e.message == "" {
		s = errorScreen{message: userMessage("", nil)}
	}
	c.screen = s
	flowTransitionsTotal.WithLabelValues(string(s.screen())).Inc()
	c.logger.Debug("Screen changed", zap.String("screen", string(s.screen())))
}

func (c *Controller) snapshotLocked() Snapshot {
	return buildSnapshot(c.screen, c.input, c.suggestions)
}

// unlockAndNotify снимает блокировку и рассылает снимок слушателям.
// notifyMu берется до отпускания mu, чтобы слушатели видели переходы в том же порядке.
func (c *Controller) unlockAndNotify() (Snapshot, error) {
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, l := range c.listeners {
		l.StateChanged(snap)
	}
	return snap, nil
}
