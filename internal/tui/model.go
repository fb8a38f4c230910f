package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/workcal/internal/app"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenCalendar Screen = iota
	ScreenClients
	ScreenStats
	ScreenAssistant
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenCalendar:
		return "Calendar"
	case ScreenClients:
		return "Clients"
	case ScreenStats:
		return "Statistics"
	case ScreenAssistant:
		return "Assistant"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int
	now           func() time.Time

	// Screen models (lazy initialized)
	calendar  tea.Model
	clients   tea.Model
	stats     tea.Model
	assistant tea.Model
	settings  tea.Model

	// First-run state
	checkedFirstRun bool

	// Error state
	err       error
	quitMsg   string // shown when quit is blocked
	quitArmed bool
}

// New creates a new root model
func New(a *app.App) Model {
	return newModel(a, time.Now)
}

func newModel(a *app.App, now func() time.Time) Model {
	return Model{
		app:           a,
		currentScreen: ScreenCalendar,
		now:           now,
		calendar:      NewCalendarModel(a, now),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkFirstRun(),
	}
	if m.calendar != nil {
		cmds = append(cmds, m.calendar.Init())
	}
	return tea.Batch(cmds...)
}

// checkFirstRun checks if any clients exist
func (m *Model) checkFirstRun() tea.Cmd {
	return func() tea.Msg {
		clients := m.app.ClientService.List(context.Background())
		return firstRunCheckMsg{hasClients: len(clients) > 0}
	}
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	refresh := func() tea.Msg { return RefreshDataMsg{} }
	switch screen {
	case ScreenCalendar:
		if m.calendar == nil {
			m.calendar = NewCalendarModel(m.app, m.now)
			return m.calendar.Init()
		}
		return refresh
	case ScreenClients:
		if m.clients == nil {
			m.clients = NewClientsModel(m.app)
			return m.clients.Init()
		}
		return refresh
	case ScreenStats:
		if m.stats == nil {
			m.stats = NewStatsModel(m.app, m.now)
			return m.stats.Init()
		}
		return refresh
	case ScreenAssistant:
		if m.assistant == nil {
			m.assistant = NewAssistantModel(m.app)
			return m.assistant.Init()
		}
		return refresh
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.app)
			return m.settings.Init()
		}
		return refresh
	}
	return nil
}

// screenModel returns the model behind a screen, nil when not yet visited
func (m *Model) screenModel(screen Screen) tea.Model {
	switch screen {
	case ScreenCalendar:
		return m.calendar
	case ScreenClients:
		return m.clients
	case ScreenStats:
		return m.stats
	case ScreenAssistant:
		return m.assistant
	case ScreenSettings:
		return m.settings
	}
	return nil
}

func (m *Model) setScreenModel(screen Screen, model tea.Model) {
	switch screen {
	case ScreenCalendar:
		m.calendar = model
	case ScreenClients:
		m.clients = model
	case ScreenStats:
		m.stats = model
	case ScreenAssistant:
		m.assistant = model
	case ScreenSettings:
		m.settings = model
	}
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screenModel(m.currentScreen).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	return m.initScreen(screen)
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Clear quit warning on any keypress
		m.quitMsg = ""
		armed := m.quitArmed
		m.quitArmed = false

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			// Global key handlers (screen navigation)
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				if m.app.Chat.Pending() && !armed {
					m.quitMsg = "The assistant is still answering. Press q again to quit anyway."
					m.quitArmed = true
					return m, nil
				}
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Calendar):
				return m, m.switchTo(ScreenCalendar)

			case key.Matches(msg, DefaultKeyMap.Clients):
				return m, m.switchTo(ScreenClients)

			case key.Matches(msg, DefaultKeyMap.Stats):
				return m, m.switchTo(ScreenStats)

			case key.Matches(msg, DefaultKeyMap.Assistant):
				return m, m.switchTo(ScreenAssistant)

			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasClients {
			m.checkedFirstRun = true
			initCmd := m.switchTo(ScreenClients)
			openFormCmd := func() tea.Msg { return OpenNewClientFormMsg{} }
			return m, tea.Batch(initCmd, openFormCmd)
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case chatReplyMsg, spinner.TickMsg:
		// Replies land on the assistant even after the user moved away
		if m.assistant != nil {
			var cmd tea.Cmd
			m.assistant, cmd = m.assistant.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if screen := m.screenModel(m.currentScreen); screen != nil {
		screen, cmd = screen.Update(msg)
		m.setScreenModel(m.currentScreen, screen)
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Header
	header := headerStyle.Render(fmt.Sprintf("workcal - %s", m.currentScreen.String()))
	if name := m.app.Chat.Responder(); name != "" {
		header += subtitleStyle.Render(fmt.Sprintf("  assistant: %s", name))
	}

	// Footer with navigation keys
	footer := footerStyle.Render("[1] Calendar  [2] Clients  [3] Stats  [4] Assistant  [,] Settings  [Q]uit")

	// Current screen content
	content := "Loading..."
	if screen := m.screenModel(m.currentScreen); screen != nil {
		content = screen.View()
	}

	// Error/warning display
	errorDisplay := ""
	if m.quitMsg != "" {
		errorDisplay = lipgloss.NewStyle().
			Foreground(warningColor).
			Render(fmt.Sprintf("\n%s", m.quitMsg))
	} else if m.err != nil {
		errorDisplay = errorStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
