// Package tui renders the recipe flow in the terminal. It holds no state of
// its own beyond widgets: every user action becomes a flow action.
package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pageza/recipegen/internal/flow"
)

// Changes is a coalescing signal raised by the machine on every dispatch
type Changes chan struct{}

// NewChanges returns a signal ready to pass to flow.WithOnChange
func NewChanges() Changes {
	return make(Changes, 1)
}

// Notify records a change without blocking
func (c Changes) Notify() {
	select {
	case c <- struct{}{}:
	default:
	}
}

type stateChangedMsg struct{}

func waitForChange(c Changes) tea.Cmd {
	return func() tea.Msg {
		<-c
		return stateChangedMsg{}
	}
}

// Model is the bubbletea model hosting a flow.Machine
type Model struct {
	machine *flow.Machine
	changes Changes
	state   flow.State

	prompt   textinput.Model
	password textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	// cursor is the highlighted idea
	cursor     int
	lastScreen flow.Screen

	width int
}

// Run shows the app until the user quits
func Run(machine *flow.Machine, changes Changes) error {
	p := tea.NewProgram(NewModel(machine, changes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// NewModel creates the model. changes must be the signal the machine notifies.
func NewModel(machine *flow.Machine, changes Changes) Model {
	prompt := textinput.New()
	prompt.Placeholder = "e.g. quick vegetarian dinner"
	prompt.CharLimit = 500
	prompt.Width = 60

	password := textinput.New()
	password.Placeholder = "RecipeGen password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := Model{
		machine:  machine,
		changes:  changes,
		prompt:   prompt,
		password: password,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state.Screen {
	case flow.ScreenLogin:
		if key.Matches(msg, m.keys.Enter) {
			m.dispatch(flow.SubmitPassword{Password: m.password.Value()})
			m.password.Reset()
			return m, nil
		}
		return m.updateInputs(msg)

	case flow.ScreenHome:
		if key.Matches(msg, m.keys.Enter) {
			m.dispatch(flow.SetPrompt{Text: m.prompt.Value()})
			m.dispatch(flow.Submit{Prompt: m.prompt.Value()})
			return m, nil
		}
		return m.updateInputs(msg)

	case flow.ScreenIdeas:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.state.Ideas)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Enter):
			if m.cursor < len(m.state.Ideas) {
				m.dispatch(flow.SelectIdea{Idea: m.state.Ideas[m.cursor]})
			}
		case key.Matches(msg, m.keys.Regenerate):
			m.dispatch(flow.Regenerate{})
		case key.Matches(msg, m.keys.Edit):
			m.dispatch(flow.EditPrompt{})
		}
		return m, nil

	case flow.ScreenCooking:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.dispatch(flow.GoBack{})
		case key.Matches(msg, m.keys.Prev):
			m.dispatch(flow.PrevStep{})
		case key.Matches(msg, m.keys.Next):
			m.dispatch(flow.NextStep{})
		case key.Matches(msg, m.keys.Retry):
			m.dispatch(flow.RetryDetails{})
		default:
			// 1-9 jump straight to a step
			if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
				m.dispatch(flow.StepTo{Index: n - 1})
			}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state.Screen {
	case flow.ScreenLogin:
		m.password, cmd = m.password.Update(msg)
	case flow.ScreenHome:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return m, cmd
}

// dispatch sends a to the machine and reads back the state it produced
func (m *Model) dispatch(a flow.Action) {
	m.machine.Dispatch(a)
	m.refresh()
}

// refresh copies the machine state and adjusts widgets when the screen changes
func (m *Model) refresh() {
	m.state = m.machine.State()

	if m.state.Screen != m.lastScreen {
		switch m.state.Screen {
		case flow.ScreenLogin:
			m.prompt.Blur()
			m.password.Focus()
		case flow.ScreenHome:
			m.password.Blur()
			m.prompt.SetValue(m.state.Prompt)
			m.prompt.CursorEnd()
			m.prompt.Focus()
		default:
			m.prompt.Blur()
			m.password.Blur()
		}
		if m.state.Screen == flow.ScreenIdeas && m.lastScreen != flow.ScreenCooking {
			m.cursor = 0
		}
		m.lastScreen = m.state.Screen
	}

	if m.cursor >= len(m.state.Ideas) {
		m.cursor = max(len(m.state.Ideas)-1, 0)
	}
}
