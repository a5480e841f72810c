package flow

import (
	"maps"
	"strings"

	"github.com/pageza/recipegen/internal/types"
)

const (
	msgPasswordRequired = "Password is required to use this app."
	msgIdeasFailed      = "Failed to generate recipe ideas."
	msgDetailsFailed    = "Failed to load recipe details."
	msgSaveFailed       = "Could not save the password."
)

// Reduce applies a to s and returns the next state together with the work
// to start, if any. It never modifies s.
func Reduce(s State, a Action) (State, Effect) {
	switch a := a.(type) {
	case SetPrompt:
		s.Prompt = a.Text
		return s, nil

	case Submit:
		if s.Screen != ScreenHome {
			return s, nil
		}
		return startIdeas(s, a.Prompt, nil)

	case Regenerate:
		if s.Screen != ScreenIdeas || s.SubmittedPrompt == "" {
			return s, nil
		}
		return startIdeas(s, s.SubmittedPrompt, s.Ideas)

	case IdeasReceived:
		if a.Gen != s.IdeasGen || !s.Loading {
			return s, nil
		}
		s.Loading = false
		s.Error = ""
		s.SubmittedPrompt = a.Prompt
		s.Ideas = a.Ideas
		s.SelectedIdea = nil
		s.ActiveRecipe = nil
		s.DetailsError = ""
		s.DetailsLoading = false
		s.Screen = ScreenIdeas
		return s, nil

	case IdeasFailed:
		if a.Gen != s.IdeasGen || !s.Loading {
			return s, nil
		}
		s.Loading = false
		s.Error = types.Message(a.Err, msgIdeasFailed)
		if types.IsAuthError(a.Err) {
			s = requireLogin(s, s.Error)
		}
		return s, nil

	case SelectIdea:
		// the listed ideas are about to be replaced while loading
		if s.Screen != ScreenIdeas || s.Loading {
			return s, nil
		}
		return selectIdea(s, a.Idea)

	case DetailsReceived:
		if a.Key != "" {
			s.Cache = withCached(s.Cache, a.Key, a.Recipe)
		}
		// stale responses stay cached for their key but never become active
		if a.Gen != s.DetailsGen || !s.DetailsLoading {
			return s, nil
		}
		recipe := a.Recipe
		s.DetailsLoading = false
		s.ActiveRecipe = &recipe
		s.CurrentStep = clampStep(s.CurrentStep, len(recipe.Steps))
		return s, nil

	case DetailsFailed:
		if a.Gen != s.DetailsGen || !s.DetailsLoading {
			return s, nil
		}
		s.DetailsLoading = false
		s.DetailsError = types.Message(a.Err, msgDetailsFailed)
		if types.IsAuthError(a.Err) {
			s = requireLogin(s, s.DetailsError)
		}
		return s, nil

	case RetryDetails:
		if s.Screen != ScreenCooking || s.SelectedIdea == nil || s.DetailsLoading {
			return s, nil
		}
		return selectIdea(s, *s.SelectedIdea)

	case StepTo:
		return moveStep(s, a.Index), nil

	case NextStep:
		return moveStep(s, s.CurrentStep+1), nil

	case PrevStep:
		return moveStep(s, s.CurrentStep-1), nil

	case GoBack:
		if s.Screen != ScreenCooking {
			return s, nil
		}
		s.Screen = ScreenIdeas
		s.ActiveRecipe = nil
		s.SelectedIdea = nil
		s.DetailsError = ""
		s.DetailsLoading = false
		s.CurrentStep = 0
		s.DetailsGen++
		return s, nil

	case EditPrompt:
		if s.Screen != ScreenIdeas {
			return s, nil
		}
		s.Screen = ScreenHome
		s.Prompt = s.SubmittedPrompt
		if s.Loading {
			s.Loading = false
			s.IdeasGen++
		}
		return s, nil

	case SubmitPassword:
		if s.Screen != ScreenLogin {
			return s, nil
		}
		if a.Password == "" {
			s.LoginError = msgPasswordRequired
			return s, nil
		}
		s.LoginError = ""
		s.Screen = s.ReturnScreen
		if s.Screen == "" || s.Screen == ScreenLogin {
			s.Screen = ScreenHome
		}
		s.ReturnScreen = ScreenHome
		return s, SaveCredential{Password: a.Password}

	case CredentialFailed:
		s = requireLogin(s, types.Message(a.Err, msgSaveFailed))
		return s, nil
	}

	return s, nil
}

func startIdeas(s State, prompt string, previous []types.RecipeIdea) (State, Effect) {
	cleaned := strings.TrimSpace(prompt)
	if cleaned == "" {
		return s, nil
	}

	s.IdeasGen++
	s.Loading = true
	s.Error = ""
	s.Screen = ScreenIdeas
	s.SubmittedPrompt = cleaned
	if len(previous) == 0 {
		s.Ideas = nil
	}

	return s, FetchIdeas{Gen: s.IdeasGen, Prompt: cleaned, Previous: previous}
}

func selectIdea(s State, idea types.RecipeIdea) (State, Effect) {
	s.SelectedIdea = &idea
	s.CurrentStep = 0
	s.Screen = ScreenCooking
	s.DetailsError = ""
	// any detail request still in flight belongs to an earlier selection
	s.DetailsGen++

	key := CacheKey(s.SubmittedPrompt, idea.ID)
	if recipe, ok := s.Cache[key]; ok {
		s.ActiveRecipe = &recipe
		s.DetailsLoading = false
		return s, nil
	}

	s.ActiveRecipe = nil
	s.DetailsLoading = true
	return s, FetchDetails{Gen: s.DetailsGen, Prompt: s.SubmittedPrompt, Idea: idea, Key: key}
}

// requireLogin sends the user to the login screen, coming back to the
// current screen afterwards
func requireLogin(s State, message string) State {
	if s.Screen != ScreenLogin {
		s.ReturnScreen = s.Screen
	}
	s.Screen = ScreenLogin
	s.LoginError = message
	return s
}

func moveStep(s State, index int) State {
	if s.ActiveRecipe == nil {
		return s
	}
	s.CurrentStep = clampStep(index, len(s.ActiveRecipe.Steps))
	return s
}

func clampStep(index, total int) int {
	if total == 0 || index < 0 {
		return 0
	}
	if index > total-1 {
		return total - 1
	}
	return index
}

// withCached returns a copy of cache with key set, leaving cache untouched
func withCached(cache map[string]types.FullRecipe, key string, recipe types.FullRecipe) map[string]types.FullRecipe {
	next := make(map[string]types.FullRecipe, len(cache)+1)
	maps.Copy(next, cache)
	next[key] = recipe
	return next
}
