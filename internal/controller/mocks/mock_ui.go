// Package mocks provides testify mocks of the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gollate.dev/pkg/gollate/internal/controller"
	m "gollate.dev/pkg/gollate/internal/model"
)

// MockUI is a mock implementation of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// NewMockUI creates a MockUI whose expectations are asserted on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mockUI := &MockUI{}
	mockUI.Mock.Test(t)

	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

// Start provides a mock function.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := []interface{}{ctx}
	for _, option := range options {
		args = append(args, option)
	}

	ret := _m.Called(args...)

	return ret.Error(0)
}

// Close provides a mock function.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait provides a mock function.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayTokens provides a mock function.
func (_m *MockUI) DisplayTokens(ctx context.Context, witnesses []m.Witness) error {
	ret := _m.Called(ctx, witnesses)
	return ret.Error(0)
}

// DisplayReport provides a mock function.
func (_m *MockUI) DisplayReport(ctx context.Context, report m.Report, cached bool) error {
	ret := _m.Called(ctx, report, cached)
	return ret.Error(0)
}

// DisplayJobFailure provides a mock function.
func (_m *MockUI) DisplayJobFailure(ctx context.Context, name string, err error) {
	_m.Called(ctx, name, err)
}

// DisplaySummary provides a mock function.
func (_m *MockUI) DisplaySummary(ctx context.Context, jobs int, failed int) {
	_m.Called(ctx, jobs, failed)
}
