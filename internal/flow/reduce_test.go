package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipegen/internal/types"
)

var (
	lentilSoup = types.RecipeIdea{ID: "lentil-soup", Title: "Lentil Soup", Difficulty: types.DifficultyEasy}
	tofuTacos  = types.RecipeIdea{ID: "tofu-tacos", Title: "Tofu Tacos", Difficulty: types.DifficultyMedium}

	testIdeas = []types.RecipeIdea{
		{ID: "veg-stir-fry", Title: "Veg Stir Fry", Difficulty: types.DifficultyEasy},
		{ID: "caprese-pasta", Title: "Caprese Pasta", Difficulty: types.DifficultyEasy},
		lentilSoup,
		tofuTacos,
	}

	lentilDetails = types.RecipeDetails{
		Servings:    "4",
		Ingredients: []string{"lentils", "onion", "carrot"},
		Steps:       []string{"Rinse lentils", "Sauté onion", "Simmer 20 min", "Season and serve"},
	}
)

func fiveSteps() types.FullRecipe {
	return types.NewFullRecipe(lentilSoup, types.RecipeDetails{
		Servings: "2",
		Steps:    []string{"one", "two", "three", "four", "five"},
	})
}

// apply reduces each action in turn, dropping effects
func apply(s State, actions ...Action) State {
	for _, a := range actions {
		s, _ = Reduce(s, a)
	}
	return s
}

// ideasState is the state after ideas arrived for prompt
func ideasState(prompt string) State {
	s, eff := Reduce(NewState(true), Submit{Prompt: prompt})
	fetch := eff.(FetchIdeas)
	s, _ = Reduce(s, IdeasReceived{Gen: fetch.Gen, Prompt: fetch.Prompt, Ideas: testIdeas})
	return s
}

// cookingState is the state with recipe active
func cookingState(recipe types.FullRecipe) State {
	s, eff := Reduce(ideasState("soup"), SelectIdea{Idea: recipe.RecipeIdea})
	fetch := eff.(FetchDetails)
	s, _ = Reduce(s, DetailsReceived{Gen: fetch.Gen, Key: fetch.Key, Recipe: recipe})
	return s
}

func TestNewState(t *testing.T) {
	assert.Equal(t, ScreenHome, NewState(true).Screen)
	assert.Equal(t, ScreenLogin, NewState(false).Screen)
	assert.NotNil(t, NewState(true).Cache)
}

func TestSubmit(t *testing.T) {
	start := NewState(true)
	start.Error = "previous failure"

	s, eff := Reduce(start, Submit{Prompt: "  quick vegetarian dinner  "})

	assert.Equal(t, ScreenIdeas, s.Screen)
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.Equal(t, "quick vegetarian dinner", s.SubmittedPrompt)
	assert.Equal(t, FetchIdeas{Gen: s.IdeasGen, Prompt: "quick vegetarian dinner"}, eff)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	start := NewState(true)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		s, eff := Reduce(start, Submit{Prompt: prompt})
		assert.Nil(t, eff)
		assert.Equal(t, start, s)
	}
}

func TestSubmitIgnoredOnLogin(t *testing.T) {
	s, eff := Reduce(NewState(false), Submit{Prompt: "soup"})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenLogin, s.Screen)
}

func TestSetPrompt(t *testing.T) {
	s := apply(NewState(true), SetPrompt{Text: "tacos"})
	assert.Equal(t, "tacos", s.Prompt)
}

func TestIdeasReceivedResetsSelection(t *testing.T) {
	s := cookingState(types.NewFullRecipe(lentilSoup, lentilDetails))
	s = apply(s, GoBack{})

	s, eff := Reduce(s, Regenerate{})
	require.IsType(t, FetchIdeas{}, eff)
	fetch := eff.(FetchIdeas)
	assert.Equal(t, testIdeas, fetch.Previous, "regenerate sends the current ideas as history")
	assert.Equal(t, testIdeas, s.Ideas, "regenerate keeps the list while loading")

	s.DetailsError = "stale"
	s, _ = Reduce(s, IdeasReceived{Gen: fetch.Gen, Prompt: "soup", Ideas: []types.RecipeIdea{tofuTacos}})

	assert.False(t, s.Loading)
	assert.Equal(t, []types.RecipeIdea{tofuTacos}, s.Ideas)
	assert.Nil(t, s.SelectedIdea)
	assert.Nil(t, s.ActiveRecipe)
	assert.Empty(t, s.DetailsError)
	assert.Equal(t, ScreenIdeas, s.Screen)
}

func TestSubmitClearsIdeasWithoutHistory(t *testing.T) {
	s := apply(ideasState("soup"), EditPrompt{}, Submit{Prompt: "tacos"})
	assert.Empty(t, s.Ideas)
	assert.True(t, s.Loading)
}

func TestIdeasFailed(t *testing.T) {
	s, eff := Reduce(NewState(true), Submit{Prompt: "soup"})
	gen := eff.(FetchIdeas).Gen

	s, _ = Reduce(s, IdeasFailed{Gen: gen, Err: types.NewFormatError("Unexpected recipe response format.", nil)})

	assert.False(t, s.Loading)
	assert.Equal(t, "Unexpected recipe response format.", s.Error)
	assert.Equal(t, ScreenIdeas, s.Screen)
}

func TestIdeasFailedWithoutMessage(t *testing.T) {
	s, eff := Reduce(NewState(true), Submit{Prompt: "soup"})
	s, _ = Reduce(s, IdeasFailed{Gen: eff.(FetchIdeas).Gen, Err: errors.New("")})
	assert.Equal(t, "Failed to generate recipe ideas.", s.Error)
}

func TestStaleIdeasAreDropped(t *testing.T) {
	s, first := Reduce(NewState(true), Submit{Prompt: "soup"})
	s, _ = Reduce(s, EditPrompt{})
	s, second := Reduce(s, Submit{Prompt: "tacos"})

	// the older response arrives last and must not win
	s, _ = Reduce(s, IdeasReceived{Gen: second.(FetchIdeas).Gen, Prompt: "tacos", Ideas: []types.RecipeIdea{tofuTacos}})
	s, _ = Reduce(s, IdeasReceived{Gen: first.(FetchIdeas).Gen, Prompt: "soup", Ideas: []types.RecipeIdea{lentilSoup}})

	assert.Equal(t, "tacos", s.SubmittedPrompt)
	assert.Equal(t, []types.RecipeIdea{tofuTacos}, s.Ideas)

	s, _ = Reduce(s, IdeasFailed{Gen: first.(FetchIdeas).Gen, Err: errors.New("late")})
	assert.Empty(t, s.Error)
}

func TestSubmitOnlyFromHome(t *testing.T) {
	s := ideasState("soup")
	next, eff := Reduce(s, Submit{Prompt: "tacos"})
	assert.Nil(t, eff)
	assert.Equal(t, s, next)

	s, _ = Reduce(NewState(true), Submit{Prompt: "soup"})
	next, eff = Reduce(s, Submit{Prompt: "tacos"})
	assert.Nil(t, eff, "a second submit while loading is ignored")
	assert.Equal(t, "soup", next.SubmittedPrompt)
}

func TestSelectIdeaIgnoredWhileLoading(t *testing.T) {
	s, eff := Reduce(ideasState("soup"), Regenerate{})
	require.IsType(t, FetchIdeas{}, eff)
	require.True(t, s.Loading)

	next, eff := Reduce(s, SelectIdea{Idea: lentilSoup})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenIdeas, next.Screen)
	assert.Nil(t, next.SelectedIdea)
}

func TestEditPromptDropsPendingIdeas(t *testing.T) {
	s, eff := Reduce(NewState(true), Submit{Prompt: "soup"})
	s, _ = Reduce(s, EditPrompt{})

	assert.Equal(t, ScreenHome, s.Screen)
	assert.Equal(t, "soup", s.Prompt)
	assert.False(t, s.Loading)

	s, _ = Reduce(s, IdeasReceived{Gen: eff.(FetchIdeas).Gen, Prompt: "soup", Ideas: testIdeas})
	assert.Equal(t, ScreenHome, s.Screen, "a late response does not pull the user back")
	assert.Empty(t, s.Ideas)
}

func TestSelectIdeaCacheMiss(t *testing.T) {
	s := ideasState("quick vegetarian dinner")
	s.DetailsError = "old"

	s, eff := Reduce(s, SelectIdea{Idea: lentilSoup})

	assert.Equal(t, ScreenCooking, s.Screen)
	assert.Equal(t, 0, s.CurrentStep)
	assert.Empty(t, s.DetailsError)
	assert.True(t, s.DetailsLoading)
	assert.Nil(t, s.ActiveRecipe)
	require.NotNil(t, s.SelectedIdea)
	assert.Equal(t, lentilSoup, *s.SelectedIdea)
	assert.Equal(t, FetchDetails{
		Gen:    s.DetailsGen,
		Prompt: "quick vegetarian dinner",
		Idea:   lentilSoup,
		Key:    "quick vegetarian dinner::lentil-soup",
	}, eff)
}

func TestSelectIdeaCacheHit(t *testing.T) {
	recipe := types.NewFullRecipe(lentilSoup, lentilDetails)
	s := apply(cookingState(recipe), NextStep{}, GoBack{})

	s, eff := Reduce(s, SelectIdea{Idea: lentilSoup})

	assert.Nil(t, eff, "cached recipe needs no fetch")
	assert.False(t, s.DetailsLoading)
	require.NotNil(t, s.ActiveRecipe)
	assert.Equal(t, recipe, *s.ActiveRecipe)
	assert.Equal(t, 0, s.CurrentStep)
}

func TestCacheIsPerPrompt(t *testing.T) {
	s := cookingState(types.NewFullRecipe(lentilSoup, lentilDetails))
	s = apply(s, GoBack{}, EditPrompt{}, Submit{Prompt: "winter stew"})
	s = apply(s, IdeasReceived{Gen: s.IdeasGen, Prompt: "winter stew", Ideas: testIdeas})

	_, eff := Reduce(s, SelectIdea{Idea: lentilSoup})
	assert.IsType(t, FetchDetails{}, eff)
}

func TestSelectIdeaOnlyFromIdeas(t *testing.T) {
	s, eff := Reduce(NewState(true), SelectIdea{Idea: lentilSoup})
	assert.Nil(t, eff)
	assert.Equal(t, ScreenHome, s.Screen)
}

func TestDetailsReceived(t *testing.T) {
	s, eff := Reduce(ideasState("quick vegetarian dinner"), SelectIdea{Idea: lentilSoup})
	fetch := eff.(FetchDetails)
	recipe := types.NewFullRecipe(lentilSoup, lentilDetails)

	s, _ = Reduce(s, DetailsReceived{Gen: fetch.Gen, Key: fetch.Key, Recipe: recipe})

	assert.False(t, s.DetailsLoading)
	require.NotNil(t, s.ActiveRecipe)
	step, ok := s.CurrentStepText()
	assert.True(t, ok)
	assert.Equal(t, "Rinse lentils", step)
	assert.Equal(t, recipe, s.Cache[fetch.Key])
}

func TestStaleDetailsAreCachedButNotShown(t *testing.T) {
	s, eff := Reduce(ideasState("soup"), SelectIdea{Idea: lentilSoup})
	fetch := eff.(FetchDetails)
	s = apply(s, GoBack{})

	before := s.Cache
	recipe := types.NewFullRecipe(lentilSoup, lentilDetails)
	s, _ = Reduce(s, DetailsReceived{Gen: fetch.Gen, Key: fetch.Key, Recipe: recipe})

	assert.Equal(t, ScreenIdeas, s.Screen)
	assert.Nil(t, s.ActiveRecipe)
	assert.Equal(t, recipe, s.Cache[fetch.Key])
	assert.NotContains(t, before, fetch.Key, "the previous cache map is not modified")

	s, eff = Reduce(s, SelectIdea{Idea: lentilSoup})
	assert.Nil(t, eff)
	assert.NotNil(t, s.ActiveRecipe)
}

func TestSwitchingIdeasDropsEarlierDetails(t *testing.T) {
	s, first := Reduce(ideasState("soup"), SelectIdea{Idea: lentilSoup})
	s = apply(s, GoBack{})
	s, second := Reduce(s, SelectIdea{Idea: tofuTacos})

	s, _ = Reduce(s, DetailsReceived{Gen: first.(FetchDetails).Gen, Key: first.(FetchDetails).Key,
		Recipe: types.NewFullRecipe(lentilSoup, lentilDetails)})
	assert.True(t, s.DetailsLoading)
	assert.Nil(t, s.ActiveRecipe)

	tacos := types.NewFullRecipe(tofuTacos, lentilDetails)
	s, _ = Reduce(s, DetailsReceived{Gen: second.(FetchDetails).Gen, Key: second.(FetchDetails).Key, Recipe: tacos})
	require.NotNil(t, s.ActiveRecipe)
	assert.Equal(t, "tofu-tacos", s.ActiveRecipe.ID)
}

func TestDetailsFailedAndRetry(t *testing.T) {
	s, eff := Reduce(ideasState("soup"), SelectIdea{Idea: lentilSoup})
	s, _ = Reduce(s, DetailsFailed{Gen: eff.(FetchDetails).Gen, Err: types.NewUpstreamError(503, "Gemini request failed.", nil)})

	assert.False(t, s.DetailsLoading)
	assert.Equal(t, "Gemini request failed.", s.DetailsError)
	assert.Equal(t, ScreenCooking, s.Screen)

	s, eff = Reduce(s, RetryDetails{})
	require.IsType(t, FetchDetails{}, eff)
	assert.Equal(t, lentilSoup, eff.(FetchDetails).Idea)
	assert.True(t, s.DetailsLoading)
	assert.Empty(t, s.DetailsError)
}

func TestRetryIgnoredWhileLoading(t *testing.T) {
	s, _ := Reduce(ideasState("soup"), SelectIdea{Idea: lentilSoup})
	_, eff := Reduce(s, RetryDetails{})
	assert.Nil(t, eff)
}

func TestStepNavigationSaturates(t *testing.T) {
	s := cookingState(fiveSteps())

	s = apply(s, PrevStep{})
	assert.Equal(t, 0, s.CurrentStep)

	s = apply(s, StepTo{Index: 4}, NextStep{})
	assert.Equal(t, 4, s.CurrentStep)

	s = apply(s, StepTo{Index: 99})
	assert.Equal(t, 4, s.CurrentStep, "out of range indices clamp to the last step")

	s = apply(s, StepTo{Index: -3})
	assert.Equal(t, 0, s.CurrentStep)

	s = apply(s, NextStep{}, NextStep{})
	assert.Equal(t, 2, s.CurrentStep)
	assert.InDelta(t, 60.0, s.Progress(), 0.001)
	assert.Equal(t, 5, s.TotalSteps())
}

func TestStepWithoutRecipeIsNoop(t *testing.T) {
	s := apply(ideasState("soup"), StepTo{Index: 3}, NextStep{})
	assert.Equal(t, 0, s.CurrentStep)
	assert.Zero(t, s.Progress())
	assert.Zero(t, s.TotalSteps())
}

func TestGoBackKeepsCache(t *testing.T) {
	s := apply(cookingState(fiveSteps()), StepTo{Index: 3}, GoBack{})

	assert.Equal(t, ScreenIdeas, s.Screen)
	assert.Nil(t, s.ActiveRecipe)
	assert.Nil(t, s.SelectedIdea)
	assert.Equal(t, 0, s.CurrentStep)
	assert.Len(t, s.Cache, 1)
	_, ok := s.CachedRecipe("lentil-soup")
	assert.True(t, ok)
}

func TestEditPromptRestoresSubmitted(t *testing.T) {
	s := ideasState("quick vegetarian dinner")
	s = apply(s, SetPrompt{Text: "something else"}, EditPrompt{})

	assert.Equal(t, ScreenHome, s.Screen)
	assert.Equal(t, "quick vegetarian dinner", s.Prompt)
}

func TestAuthFailureGoesToLogin(t *testing.T) {
	s, eff := Reduce(NewState(true), Submit{Prompt: "soup"})
	s, _ = Reduce(s, IdeasFailed{Gen: eff.(FetchIdeas).Gen,
		Err: types.NewAuthError("Unauthorized. Check your password and try again.")})

	assert.Equal(t, ScreenLogin, s.Screen)
	assert.Equal(t, "Unauthorized. Check your password and try again.", s.LoginError)
	assert.Equal(t, ScreenIdeas, s.ReturnScreen)

	s, eff = Reduce(s, SubmitPassword{Password: "hunter2"})
	assert.Equal(t, SaveCredential{Password: "hunter2"}, eff)
	assert.Equal(t, ScreenIdeas, s.Screen)
	assert.Empty(t, s.LoginError)
}

func TestDetailAuthFailureReturnsToCooking(t *testing.T) {
	s, eff := Reduce(ideasState("soup"), SelectIdea{Idea: lentilSoup})
	s, _ = Reduce(s, DetailsFailed{Gen: eff.(FetchDetails).Gen, Err: types.NewAuthError("Unauthorized. Check your password and try again.")})
	assert.Equal(t, ScreenLogin, s.Screen)

	s, _ = Reduce(s, SubmitPassword{Password: "hunter2"})
	assert.Equal(t, ScreenCooking, s.Screen)

	_, eff = Reduce(s, RetryDetails{})
	assert.IsType(t, FetchDetails{}, eff)
}

func TestSubmitEmptyPassword(t *testing.T) {
	s, eff := Reduce(NewState(false), SubmitPassword{Password: ""})

	assert.Nil(t, eff)
	assert.Equal(t, ScreenLogin, s.Screen)
	assert.Equal(t, "Password is required to use this app.", s.LoginError)

	s, eff = Reduce(s, SubmitPassword{Password: "pw"})
	assert.Equal(t, ScreenHome, s.Screen)
	assert.IsType(t, SaveCredential{}, eff)
}

func TestCredentialFailed(t *testing.T) {
	s := apply(NewState(true), CredentialFailed{Err: errors.New("disk full")})
	assert.Equal(t, ScreenLogin, s.Screen)
	assert.Equal(t, "disk full", s.LoginError)
	assert.Equal(t, ScreenHome, s.ReturnScreen)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := cookingState(fiveSteps())
	snapshot := s
	cacheLen := len(s.Cache)

	_ = apply(s, NextStep{}, GoBack{}, SelectIdea{Idea: tofuTacos})
	next, eff := Reduce(s, GoBack{})
	next, _ = Reduce(next, SelectIdea{Idea: tofuTacos})
	_, _ = Reduce(next, DetailsReceived{Gen: next.DetailsGen, Key: "k", Recipe: fiveSteps()})

	assert.Nil(t, eff)
	assert.Equal(t, snapshot, s)
	assert.Len(t, s.Cache, cacheLen)
}
