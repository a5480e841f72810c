// Package flow holds the recipe app's state machine. State only changes
// through Reduce; Machine runs the effects Reduce asks for and feeds their
// results back as actions.
package flow

import (
	"github.com/pageza/recipegen/internal/types"
)

// Screen is the view currently shown
type Screen string

const (
	ScreenLogin   Screen = "login"
	ScreenHome    Screen = "home"
	ScreenIdeas   Screen = "ideas"
	ScreenCooking Screen = "cooking"
)

// State is the whole client state. Values are never mutated after being
// returned from Reduce, so a State may be shared freely but must be
// treated as read-only.
type State struct {
	Screen Screen

	// Prompt is the editable text; SubmittedPrompt is what ideas were asked for
	Prompt          string
	SubmittedPrompt string

	Ideas   []types.RecipeIdea
	Loading bool
	Error   string

	SelectedIdea   *types.RecipeIdea
	ActiveRecipe   *types.FullRecipe
	DetailsLoading bool
	DetailsError   string

	// Cache maps CacheKey(prompt, idea id) to the expanded recipe
	Cache       map[string]types.FullRecipe
	CurrentStep int

	// IdeasGen and DetailsGen identify the request a response must match
	IdeasGen   uint64
	DetailsGen uint64

	LoginError string
	// ReturnScreen is where a successful login goes back to
	ReturnScreen Screen
}

// NewState returns the starting state. Without a stored credential the
// app opens on the login screen.
func NewState(hasCredential bool) State {
	s := State{
		Screen:       ScreenHome,
		Cache:        map[string]types.FullRecipe{},
		ReturnScreen: ScreenHome,
	}
	if !hasCredential {
		s.Screen = ScreenLogin
	}
	return s
}

// CacheKey identifies a recipe expanded for prompt
func CacheKey(prompt, ideaID string) string {
	return prompt + "::" + ideaID
}

// CachedRecipe looks up the recipe for idea under the submitted prompt
func (s State) CachedRecipe(ideaID string) (types.FullRecipe, bool) {
	recipe, ok := s.Cache[CacheKey(s.SubmittedPrompt, ideaID)]
	return recipe, ok
}

// TotalSteps is the active recipe's step count, 0 without one
func (s State) TotalSteps() int {
	if s.ActiveRecipe == nil {
		return 0
	}
	return len(s.ActiveRecipe.Steps)
}

// Progress is the share of steps reached, in percent
func (s State) Progress() float64 {
	total := s.TotalSteps()
	if total == 0 {
		return 0
	}
	return float64(s.CurrentStep+1) / float64(total) * 100
}

// CurrentStepText returns the instruction at CurrentStep
func (s State) CurrentStepText() (string, bool) {
	if s.CurrentStep < 0 || s.CurrentStep >= s.TotalSteps() {
		return "", false
	}
	return s.ActiveRecipe.Steps[s.CurrentStep], true
}
