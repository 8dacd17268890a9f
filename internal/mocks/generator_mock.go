package mocks

import (
	"context"

	"storyboard-server/internal/domain"
	"storyboard-server/internal/generation"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock type for the Generator type
type MockGenerator struct {
	mock.Mock
}

// Suggest provides a mock function with given fields: ctx, topic, language
func (_m *MockGenerator) Suggest(ctx context.Context, topic string, language domain.Language) (domain.Suggestions, error) {
	ret := _m.Called(ctx, topic, language)

	var r0 domain.Suggestions
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.Language) domain.Suggestions); ok {
		r0 = rf(ctx, topic, language)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.Suggestions)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.Language) error); ok {
		r1 = rf(ctx, topic, language)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Storyboard provides a mock function with given fields: ctx, input, suggestions
func (_m *MockGenerator) Storyboard(ctx context.Context, input domain.UserInput, suggestions domain.Suggestions) ([]domain.Scene, error) {
	ret := _m.Called(ctx, input, suggestions)

	var r0 []domain.Scene
	if rf, ok := ret.Get(0).(func(context.Context, domain.UserInput, domain.Suggestions) []domain.Scene); ok {
		r0 = rf(ctx, input, suggestions)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Scene)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, domain.UserInput, domain.Suggestions) error); ok {
		r1 = rf(ctx, input, suggestions)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ generation.Generator = (*MockGenerator)(nil)
