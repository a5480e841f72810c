package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipegen/internal/flow"
	"github.com/pageza/recipegen/internal/types"
)

type stubRecipes struct{}

func (stubRecipes) GenerateIdeas(_ context.Context, prompt string, _ []types.RecipeIdea) ([]types.RecipeIdea, error) {
	return []types.RecipeIdea{
		{ID: "veg-stir-fry", Title: "Veg Stir Fry", Difficulty: types.DifficultyEasy},
		{ID: "lentil-soup", Title: "Lentil Soup", Difficulty: types.DifficultyEasy},
		{ID: "caprese-pasta", Title: "Caprese Pasta", Difficulty: types.DifficultyEasy},
		{ID: "tofu-tacos", Title: "Tofu Tacos", Difficulty: types.DifficultyMedium},
	}, nil
}

func (stubRecipes) GenerateDetails(context.Context, string, types.RecipeIdea) (types.RecipeDetails, error) {
	return types.RecipeDetails{
		Servings:    "4",
		Ingredients: []string{"lentils", "onion"},
		Steps:       []string{"Rinse lentils", "Sauté onion", "Simmer 20 min", "Season and serve"},
	}, nil
}

type savedPasswords []string

func (s *savedPasswords) SetPassword(pw string) error {
	*s = append(*s, pw)
	return nil
}

func newTestModel(t *testing.T, hasCredential bool) (Model, *flow.Machine, *savedPasswords) {
	t.Helper()
	changes := NewChanges()
	saver := &savedPasswords{}
	machine := flow.NewMachine(stubRecipes{}, saver, flow.NewState(hasCredential), flow.WithOnChange(changes.Notify))
	t.Cleanup(machine.Close)
	return NewModel(machine, changes), machine, saver
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func typeText(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyPress(k tea.KeyType) tea.Msg {
	return tea.KeyMsg{Type: k}
}

func TestHomeToCooking(t *testing.T) {
	m, machine, _ := newTestModel(t, true)
	assert.Contains(t, m.View(), "What would you like to cook?")

	m = send(t, m, typeText("quick vegetarian dinner"), keyPress(tea.KeyEnter))
	assert.Equal(t, flow.ScreenIdeas, m.state.Screen)

	machine.Wait()
	m = send(t, m, stateChangedMsg{})
	view := m.View()
	assert.Contains(t, view, "Lentil Soup")
	assert.Contains(t, view, "Tofu Tacos")

	m = send(t, m, keyPress(tea.KeyDown), keyPress(tea.KeyEnter))
	require.Equal(t, flow.ScreenCooking, m.state.Screen)

	machine.Wait()
	m = send(t, m, stateChangedMsg{})
	view = m.View()
	assert.Contains(t, view, "Step 1 of 4")
	assert.Contains(t, view, "Rinse lentils")

	m = send(t, m, keyPress(tea.KeyRight))
	assert.Contains(t, m.View(), "Step 2 of 4")

	m = send(t, m, typeText("9"))
	assert.Equal(t, 3, m.state.CurrentStep, "digit jumps clamp to the last step")

	m = send(t, m, keyPress(tea.KeyEsc))
	assert.Equal(t, flow.ScreenIdeas, m.state.Screen)
	assert.Equal(t, 1, m.cursor, "cursor stays on the idea the user came back from")
}

func TestEditPromptRestoresInput(t *testing.T) {
	m, machine, _ := newTestModel(t, true)

	m = send(t, m, typeText("soup"), keyPress(tea.KeyEnter))
	machine.Wait()
	m = send(t, m, stateChangedMsg{}, typeText("e"))

	assert.Equal(t, flow.ScreenHome, m.state.Screen)
	assert.Equal(t, "soup", m.prompt.Value())
}

func TestLoginScreen(t *testing.T) {
	m, _, saver := newTestModel(t, false)
	assert.Contains(t, m.View(), "shared password")

	m = send(t, m, keyPress(tea.KeyEnter))
	assert.Contains(t, m.View(), "Password is required to use this app.")

	m = send(t, m, typeText("hunter2"), keyPress(tea.KeyEnter))
	assert.Equal(t, flow.ScreenHome, m.state.Screen)
	assert.Equal(t, savedPasswords{"hunter2"}, *saver)
	assert.NotContains(t, m.View(), "hunter2")
}

func TestProgressBar(t *testing.T) {
	assert.Contains(t, progressBar(50, 10), " 50%")
	assert.Contains(t, progressBar(100, 10), "100%")
}

func TestChangesCoalesce(t *testing.T) {
	c := NewChanges()
	c.Notify()
	c.Notify()
	assert.Len(t, c, 1)
}
