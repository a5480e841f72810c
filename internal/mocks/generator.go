package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock of anything that turns a prompt into model text
type MockGenerator struct {
	mock.Mock
}

// GenerateJSON mocks the GenerateJSON method
func (m *MockGenerator) GenerateJSON(ctx context.Context, promptText string) (string, error) {
	args := m.Called(ctx, promptText)
	return args.String(0), args.Error(1)
}
