package service

import (
	"encoding/json"
	"fmt"

	"github.com/pageza/recipegen/internal/types"
)

const ideasFormat = `Return only strict JSON in this exact format:
[
  {
    "id": "short-kebab-case-id",
    "title": "Recipe title",
    "description": "1-2 sentence summary",
    "prepTime": "e.g. 15 min",
    "cookTime": "e.g. 30 min",
    "difficulty": "Easy/Medium/Hard"
  }
]
Requirements:
- Exactly 4 recipes
- Practical for home cooking
- If previously generated ideas are provided, produce clearly different recipes with different primary proteins/vegetables/flavor profiles/cuisines and avoid repeating titles or close variants`

const detailsFormat = `Return only strict JSON in this exact format:
{
  "servings": "e.g. 4",
  "ingredients": ["..."],
  "steps": ["...", "...", "...", "..."]
}
Requirements:
- At least 4 steps
- Ingredients and steps must match the selected idea
- Keep the recipe practical for home cooking`

// ideasPrompt asks for four ideas, listing previous ones so a regeneration
// moves away from them
func ideasPrompt(prompt string, previous []types.RecipeIdea) (string, error) {
	var history string
	if len(previous) > 0 {
		pretty, err := json.MarshalIndent(previous, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode previous ideas: %w", err)
		}
		history = fmt.Sprintf("Previously generated ideas to avoid repeating:\n%s\n\n", pretty)
	}

	return fmt.Sprintf("Generate four distinct recipe ideas based on this request: \"%s\".\n%s%s",
		prompt, history, ideasFormat), nil
}

func detailsPrompt(prompt string, idea types.RecipeIdea) (string, error) {
	pretty, err := json.MarshalIndent(idea, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode selected idea: %w", err)
	}

	return fmt.Sprintf("You are expanding one selected recipe idea into a full home-cooking recipe.\n"+
		"Original user request: \"%s\"\n"+
		"Selected recipe idea:\n%s\n\n%s", prompt, pretty, detailsFormat), nil
}
