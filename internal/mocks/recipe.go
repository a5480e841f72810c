package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipegen/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// GenerateIdeas mocks the GenerateIdeas method
func (m *MockRecipeService) GenerateIdeas(ctx context.Context, prompt string, previous []types.RecipeIdea) ([]types.RecipeIdea, error) {
	args := m.Called(ctx, prompt, previous)
	ideas, _ := args.Get(0).([]types.RecipeIdea)
	return ideas, args.Error(1)
}

// GenerateDetails mocks the GenerateDetails method
func (m *MockRecipeService) GenerateDetails(ctx context.Context, prompt string, idea types.RecipeIdea) (types.RecipeDetails, error) {
	args := m.Called(ctx, prompt, idea)
	details, _ := args.Get(0).(types.RecipeDetails)
	return details, args.Error(1)
}
