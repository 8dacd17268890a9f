package mocks

import (
	"context"

	"storyboard-server/internal/generation"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock type for the Backend type
type MockBackend struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, req
func (_m *MockBackend) Complete(ctx context.Context, req generation.CompletionRequest) (string, generation.UsageInfo, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, generation.CompletionRequest) string); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.String(0)
	}

	var r1 generation.UsageInfo
	if rf, ok := ret.Get(1).(func(context.Context, generation.CompletionRequest) generation.UsageInfo); ok {
		r1 = rf(ctx, req)
	} else if ret.Get(1) != nil {
		r1 = ret.Get(1).(generation.UsageInfo)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, generation.CompletionRequest) error); ok {
		r2 = rf(ctx, req)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// Model provides a mock function with no fields
func (_m *MockBackend) Model() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockBackend creates a new instance of MockBackend. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	m := &MockBackend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ generation.Backend = (*MockBackend)(nil)
