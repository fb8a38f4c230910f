package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/assistant"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	chatWidth   = 78
	chatHeight  = 16
	chatTimeout = 60 * time.Second
)

// AssistantModel is the chat panel
type AssistantModel struct {
	app      *app.App
	input    textinput.Model
	history  viewport.Model
	spinner  spinner.Model
	waiting  bool
	err      error
	rendered int // messages rendered into the viewport
}

type chatReplyMsg struct {
	err error
}

// NewAssistantModel creates the chat screen with the input focused
func NewAssistantModel(a *app.App) tea.Model {
	input := newField("Ask about your hours, clients or statistics...", 500, chatWidth-4)
	input.Focus()

	return &AssistantModel{
		app:     a,
		input:   input,
		history: viewport.New(chatWidth, chatHeight),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(accentColor))),
	}
}

// IsCapturingInput returns true while the input box has focus
func (m *AssistantModel) IsCapturingInput() bool {
	return m.input.Focused()
}

func (m *AssistantModel) Init() tea.Cmd {
	m.refresh()
	return textinput.Blink
}

func (m *AssistantModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		_, err := m.app.Chat.Send(ctx, text)
		return chatReplyMsg{err: err}
	}
}

// refresh re-renders the history, following the bottom when new messages arrive
func (m *AssistantModel) refresh() {
	messages := m.app.Chat.Messages()

	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(chatWidth - 2)
	for _, msg := range messages {
		if msg.Role == assistant.RoleUser {
			b.WriteString(userBubbleStyle.Render("You") + "\n")
			b.WriteString(wrap.Render(msg.Content) + "\n\n")
			continue
		}
		b.WriteString(titleStyle.Render("Assistant") + subtitleStyle.Render(" "+msg.At.Format("15:04")) + "\n")
		b.WriteString(assistantBubbleStyle.Width(chatWidth - 2).Render(msg.Content) + "\n\n")
	}
	if m.waiting {
		b.WriteString(m.spinner.View() + subtitleStyle.Render(" thinking..."))
	}

	m.history.SetContent(b.String())
	if len(messages) != m.rendered || m.waiting {
		m.history.GotoBottom()
	}
	m.rendered = len(messages)
}

func (m *AssistantModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.refresh()
		return m, nil

	case chatReplyMsg:
		m.waiting = false
		m.err = msg.err
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyMsg:
		m.err = nil

		if !m.input.Focused() {
			switch msg.String() {
			case "i", "enter", "/":
				return m, m.input.Focus()
			}
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc":
			m.input.Blur()
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if m.waiting || m.app.Chat.Pending() {
				m.err = assistant.ErrBusy
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.refresh()
			return m, tea.Batch(m.send(text), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *AssistantModel) View() string {
	var s string
	s += titleStyle.Render("Assistant") + subtitleStyle.Render(fmt.Sprintf("  (%s)", m.app.Chat.Responder())) + "\n\n"
	s += m.history.View() + "\n\n"

	s += boxStyle.BorderForeground(borderColor).Render(m.input.View()) + "\n"

	if m.err != nil {
		text := m.err.Error()
		if errors.Is(m.err, assistant.ErrBusy) {
			text = "Please wait for the current answer."
		}
		s += errorStyle.Render("  "+text) + "\n"
	}

	if m.input.Focused() {
		s += helpStyle.Render("  enter: send  pgup/pgdown: scroll  esc: leave input")
	} else {
		s += helpStyle.Render("  i: type a question  j/k: scroll  1-4: switch screen")
	}
	return s
}
