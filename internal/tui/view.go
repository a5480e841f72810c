package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pageza/recipegen/internal/flow"
	"github.com/pageza/recipegen/internal/types"
)

var (
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")).MarginBottom(1)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	stepStyle     = lipgloss.NewStyle().Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("208")).PaddingLeft(1)
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("RecipeGen"))
	b.WriteString("\n")

	switch m.state.Screen {
	case flow.ScreenLogin:
		b.WriteString(m.loginView())
	case flow.ScreenHome:
		b.WriteString(m.homeView())
	case flow.ScreenIdeas:
		b.WriteString(m.ideasView())
	case flow.ScreenCooking:
		b.WriteString(m.cookingView())
	}
	return b.String()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString("Enter the shared password to use the app.\n\n")
	b.WriteString(m.password.View())
	b.WriteString("\n")
	if m.state.LoginError != "" {
		b.WriteString("\n" + errorStyle.Render(m.state.LoginError) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("enter submit • ctrl+c quit"))
	return b.String()
}

func (m Model) homeView() string {
	var b strings.Builder
	b.WriteString("What would you like to cook?\n\n")
	b.WriteString(m.prompt.View())
	b.WriteString("\n")
	if m.state.Error != "" {
		b.WriteString("\n" + errorStyle.Render(m.state.Error) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("enter generate ideas • ctrl+c quit"))
	return b.String()
}

func (m Model) ideasView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ideas for %s\n\n", accentStyle.Render(fmt.Sprintf("%q", m.state.SubmittedPrompt)))

	if m.state.Loading {
		b.WriteString(m.spinner.View() + " Generating recipe ideas…\n\n")
	}
	if m.state.Error != "" {
		b.WriteString(errorStyle.Render(m.state.Error) + "\n\n")
	}

	for i, idea := range m.state.Ideas {
		b.WriteString(m.ideaCard(idea, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.help.View(ideasKeys(m.keys)))
	return b.String()
}

func (m Model) ideaCard(idea types.RecipeIdea, selected bool) string {
	title := idea.Title
	if selected {
		title = selectedStyle.Render(" " + title + " ")
	}
	meta := mutedStyle.Render(fmt.Sprintf("Prep %s • Cook %s • %s", idea.PrepTime, idea.CookTime, idea.Difficulty))
	body := title + "\n" + idea.Description + "\n" + meta

	style := cardStyle
	if selected {
		style = style.BorderForeground(lipgloss.Color("208"))
	}
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(body)
}

func (m Model) cookingView() string {
	var b strings.Builder
	if m.state.SelectedIdea != nil {
		b.WriteString(accentStyle.Bold(true).Render(m.state.SelectedIdea.Title) + "\n\n")
	}

	switch {
	case m.state.DetailsLoading:
		b.WriteString(m.spinner.View() + " Loading the full recipe…\n")
	case m.state.DetailsError != "":
		b.WriteString(errorStyle.Render(m.state.DetailsError) + "\n")
		b.WriteString(mutedStyle.Render("press r to retry") + "\n")
	case m.state.ActiveRecipe != nil:
		b.WriteString(m.recipeView(*m.state.ActiveRecipe))
	}

	b.WriteString("\n" + m.help.View(cookingKeys(m.keys)))
	return b.String()
}

func (m Model) recipeView(recipe types.FullRecipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Serves %s\n\n", recipe.Servings)

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Ingredients") + "\n")
	for _, ingredient := range recipe.Ingredients {
		b.WriteString("  • " + ingredient + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Step %d of %d  %s\n", m.state.CurrentStep+1, m.state.TotalSteps(), progressBar(m.state.Progress(), 20))
	if step, ok := m.state.CurrentStepText(); ok {
		b.WriteString(stepStyle.Render(step) + "\n")
	}
	return b.String()
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return accentStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %3.0f%%", percent)
}
