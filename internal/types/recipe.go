package types

// Difficulty is the effort level the model assigns to a recipe idea
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// DifficultyLevels lists the accepted difficulty values in display order
var DifficultyLevels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of DifficultyLevels
func (d Difficulty) Valid() bool {
	for _, level := range DifficultyLevels {
		if d == level {
			return true
		}
	}
	return false
}

// RecipeIdea is a short recipe proposal without instructions
type RecipeIdea struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PrepTime    string     `json:"prepTime"`
	CookTime    string     `json:"cookTime"`
	Difficulty  Difficulty `json:"difficulty"`
}

// RecipeDetails holds the expansion of a single idea
type RecipeDetails struct {
	Servings    string   `json:"servings"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// FullRecipe is an idea merged with its details
type FullRecipe struct {
	RecipeIdea
	RecipeDetails
}

// NewFullRecipe joins an idea with the details generated for it
func NewFullRecipe(idea RecipeIdea, details RecipeDetails) FullRecipe {
	return FullRecipe{RecipeIdea: idea, RecipeDetails: details}
}

// GenerateRequest is the proxy request body
type GenerateRequest struct {
	PromptText *string `json:"promptText"`
}

// GenerateResponse is the proxy success body
type GenerateResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of every proxy failure
type ErrorResponse struct {
	Error string `json:"error"`
}
