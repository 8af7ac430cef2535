// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gollate.dev/pkg/gollate/internal/domain"
)

// MockWorkflow is a mock implementation of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted on
// cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Mock.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// Collate provides a mock function.
func (_m *MockWorkflow) Collate(ctx context.Context, args domain.CollateArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// Tokens provides a mock function.
func (_m *MockWorkflow) Tokens(ctx context.Context, args domain.TokensArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// Batch provides a mock function.
func (_m *MockWorkflow) Batch(ctx context.Context, args domain.BatchArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// View provides a mock function.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}
