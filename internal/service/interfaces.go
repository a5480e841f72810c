package service

import (
	"context"

	"github.com/pageza/recipegen/internal/types"
)

// JSONGenerator turns a prompt into the model's raw JSON text. The proxy
// client implements it; tests use fakes.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, promptText string) (string, error)
}

// IRecipeService defines the interface for recipe generation
type IRecipeService interface {
	GenerateIdeas(ctx context.Context, prompt string, previousIdeas []types.RecipeIdea) ([]types.RecipeIdea, error)
	GenerateDetails(ctx context.Context, prompt string, idea types.RecipeIdea) (types.RecipeDetails, error)
}
