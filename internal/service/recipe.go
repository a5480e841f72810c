package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/recipegen/internal/types"
)

const (
	// IdeaCount is the number of ideas every generation must return
	IdeaCount = 4
	// MinSteps is the fewest steps a detailed recipe may have
	MinSteps = 4

	msgBadIdeas   = "Unexpected recipe response format."
	msgBadDetails = "Unexpected recipe detail response format."
)

// ideaReply mirrors RecipeIdea with pointers so that a missing field can be
// told apart from an empty one
type ideaReply struct {
	ID          *string `json:"id" validate:"required,min=1"`
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	PrepTime    *string `json:"prepTime" validate:"required"`
	CookTime    *string `json:"cookTime" validate:"required"`
	Difficulty  *string `json:"difficulty" validate:"required,difficulty"`
}

type ideasReply struct {
	Ideas []ideaReply `validate:"len=4,dive"`
}

type detailsReply struct {
	Servings    *string  `json:"servings" validate:"required"`
	Ingredients []string `json:"ingredients" validate:"required"`
	Steps       []string `json:"steps" validate:"required,min=4"`
}

// RecipeService builds prompts, calls the generator and checks the shape of
// what comes back
type RecipeService struct {
	generator JSONGenerator
	validate  *validator.Validate
	log       *zap.Logger
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(generator JSONGenerator, log *zap.Logger) *RecipeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeService{
		generator: generator,
		validate:  newValidator(),
		log:       log,
	}
}

// newValidator adds the "difficulty" tag, accepting types.DifficultyLevels
func newValidator() *validator.Validate {
	v := validator.New()
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return types.Difficulty(fl.Field().String()).Valid()
	})
	return v
}

// GenerateIdeas asks for exactly four ideas for prompt. Non-empty
// previousIdeas are embedded so the model avoids repeating them.
// Generator errors are returned unchanged.
func (s *RecipeService) GenerateIdeas(ctx context.Context, prompt string, previousIdeas []types.RecipeIdea) ([]types.RecipeIdea, error) {
	promptText, err := ideasPrompt(prompt, previousIdeas)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.GenerateJSON(ctx, promptText)
	if err != nil {
		return nil, err
	}

	var reply ideasReply
	if err := s.decode(text, &reply.Ideas, msgBadIdeas); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(reply); err != nil {
		s.log.Warn("recipe ideas have unexpected shape", zap.Error(err))
		return nil, types.NewFormatError(msgBadIdeas, err)
	}

	ideas := make([]types.RecipeIdea, 0, len(reply.Ideas))
	for _, r := range reply.Ideas {
		ideas = append(ideas, types.RecipeIdea{
			ID:          *r.ID,
			Title:       *r.Title,
			Description: *r.Description,
			PrepTime:    *r.PrepTime,
			CookTime:    *r.CookTime,
			Difficulty:  types.Difficulty(*r.Difficulty),
		})
	}
	return ideas, nil
}

// GenerateDetails expands idea into servings, ingredients and at least four steps
func (s *RecipeService) GenerateDetails(ctx context.Context, prompt string, idea types.RecipeIdea) (types.RecipeDetails, error) {
	promptText, err := detailsPrompt(prompt, idea)
	if err != nil {
		return types.RecipeDetails{}, err
	}

	text, err := s.generator.GenerateJSON(ctx, promptText)
	if err != nil {
		return types.RecipeDetails{}, err
	}

	var reply detailsReply
	if err := s.decode(text, &reply, msgBadDetails); err != nil {
		return types.RecipeDetails{}, err
	}
	if err := s.validate.Struct(reply); err != nil {
		s.log.Warn("recipe details have unexpected shape", zap.String("idea_id", idea.ID), zap.Error(err))
		return types.RecipeDetails{}, types.NewFormatError(msgBadDetails, err)
	}

	return types.RecipeDetails{
		Servings:    *reply.Servings,
		Ingredients: reply.Ingredients,
		Steps:       reply.Steps,
	}, nil
}

// decode separates text that is not JSON at all from JSON of the wrong type.
// Both become a FormatError carrying message.
func (s *RecipeService) decode(text string, into any, message string) error {
	if !json.Valid([]byte(text)) {
		s.log.Warn("model reply is not valid JSON", zap.Int("chars", len(text)))
		return types.NewFormatError(message, nil)
	}
	if err := json.Unmarshal([]byte(text), into); err != nil {
		s.log.Warn("model reply has unexpected JSON types", zap.Error(err))
		return types.NewFormatError(message, err)
	}
	return nil
}
