package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type calendarMode int

const (
	calendarModeGrid          calendarMode = iota
	calendarModeDay                        // cursor in the selected day's sessions
	calendarModeForm                       // new/edit session form
	calendarModeConfirmDelete              // y/n confirmation before delete
)

// session form field indices
const (
	eventFieldClient = iota
	eventFieldHours
	eventFieldMode
	eventFieldNotes
	eventFieldStart
	eventFieldEnd
	eventFieldCount
)

const maxDots = 4

// CalendarModel shows the month grid and the sessions of the selected day
type CalendarModel struct {
	app      *app.App
	now      func() time.Time
	month    domain.YearMonth
	selected time.Time
	days     []service.CalendarDay
	detail   *service.DayDetail
	clients  []domain.Client
	cursor   int
	loading  bool
	err      error

	statusMsg string

	// Form state
	mode       calendarMode
	fields     []textinput.Model
	fieldFocus int
	clientIdx  int
	formMode   domain.WorkMode
	editingID  string // empty for a new session
}

type calendarDataMsg struct {
	days    []service.CalendarDay
	detail  *service.DayDetail
	clients []domain.Client
}

type eventSavedMsg struct {
	event domain.CalendarEvent
	err   error
}

type eventDeletedMsg struct {
	err error
}

type exportDoneMsg struct {
	what string
	path string
	err  error
}

// NewCalendarModel creates the calendar screen on the current month
func NewCalendarModel(a *app.App, now func() time.Time) tea.Model {
	today := dateOnly(now())
	return &CalendarModel{
		app:      a,
		now:      now,
		month:    domain.MonthOf(today),
		selected: today,
		loading:  true,
	}
}

// IsCapturingInput returns true when the form or delete confirmation is active
func (m *CalendarModel) IsCapturingInput() bool {
	return m.mode == calendarModeForm || m.mode == calendarModeConfirmDelete
}

func (m *CalendarModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *CalendarModel) loadData() tea.Cmd {
	month := m.month
	date := domain.FormatDate(m.selected)
	return func() tea.Msg {
		ctx := context.Background()
		return calendarDataMsg{
			days:    m.app.ReportService.Calendar(ctx, month),
			detail:  m.app.ReportService.Day(ctx, date),
			clients: m.app.ClientService.List(ctx),
		}
	}
}

// selectDate moves the selection, switching month when needed
func (m *CalendarModel) selectDate(t time.Time) tea.Cmd {
	m.selected = dateOnly(t)
	m.cursor = 0
	m.month = domain.MonthOf(m.selected)
	return m.loadData()
}

func (m *CalendarModel) initForm(editing *domain.CalendarEvent) {
	m.fields = make([]textinput.Model, eventFieldCount)
	m.fields[eventFieldHours] = newField("8 (full day)", 5, 10)
	m.fields[eventFieldNotes] = newField("Optional notes", 200, 50)
	m.fields[eventFieldStart] = newField("09:00", 5, 8)
	m.fields[eventFieldEnd] = newField("17:00", 5, 8)

	m.clientIdx = 0
	m.formMode = domain.WorkModeOnSite
	m.editingID = ""

	if editing != nil {
		m.editingID = editing.ID
		m.formMode = editing.Mode
		m.fields[eventFieldHours].SetValue(strconv.FormatFloat(editing.Hours, 'f', -1, 64))
		m.fields[eventFieldNotes].SetValue(editing.Notes)
		m.fields[eventFieldStart].SetValue(editing.StartTime)
		m.fields[eventFieldEnd].SetValue(editing.EndTime)
		for i, c := range m.clients {
			if c.ID == editing.ClientID {
				m.clientIdx = i
			}
		}
	}

	m.fieldFocus = eventFieldClient
}

func (m *CalendarModel) saveEvent() tea.Cmd {
	if len(m.clients) == 0 {
		return func() tea.Msg { return eventSavedMsg{err: fmt.Errorf("add a client first")} }
	}

	hours, err := parseAmount("hours", m.fields[eventFieldHours].Value())
	if err != nil {
		return func() tea.Msg { return eventSavedMsg{err: err} }
	}

	input := service.EventInput{
		ID:        m.editingID,
		Date:      domain.FormatDate(m.selected),
		ClientID:  m.clients[m.clientIdx].ID,
		Hours:     hours,
		Mode:      string(m.formMode),
		Notes:     m.fields[eventFieldNotes].Value(),
		IsFullDay: hours == 0 || hours == domain.HoursPerDay,
		StartTime: strings.TrimSpace(m.fields[eventFieldStart].Value()),
		EndTime:   strings.TrimSpace(m.fields[eventFieldEnd].Value()),
	}
	if m.editingID != "" {
		// Editing keeps the session's original date
		if e, err := m.app.EventService.Get(context.Background(), m.editingID); err == nil {
			input.Date = e.Date
		}
	}

	return func() tea.Msg {
		event, err := m.app.EventService.Save(context.Background(), input)
		return eventSavedMsg{event: event, err: err}
	}
}

func (m *CalendarModel) deleteEvent(id string) tea.Cmd {
	return func() tea.Msg {
		return eventDeletedMsg{err: m.app.EventService.Delete(context.Background(), id)}
	}
}

func (m *CalendarModel) exportCalendar() tea.Cmd {
	month := m.month
	return func() tea.Msg {
		path := filepath.Join(m.app.Config.Export.OutputDir, m.app.ExportService.Filename(month))
		err := writeFile(path, func(w io.Writer) error {
			_, err := m.app.ExportService.Export(context.Background(), month, w)
			return err
		})
		return exportDoneMsg{what: "Calendar", path: path, err: err}
	}
}

func (m *CalendarModel) exportBackup() tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(m.app.Config.Export.OutputDir, m.app.BackupService.Filename(m.now()))
		err := writeFile(path, func(w io.Writer) error {
			return m.app.BackupService.Export(context.Background(), w)
		})
		return exportDoneMsg{what: "Backup", path: path, err: err}
	}
}

func (m *CalendarModel) selectedEvent() (domain.CalendarEvent, bool) {
	if m.detail == nil || m.cursor >= len(m.detail.Events) {
		return domain.CalendarEvent{}, false
	}
	return m.detail.Events[m.cursor], true
}

func (m *CalendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case calendarModeForm:
		return m.updateForm(msg)
	case calendarModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case calendarDataMsg:
		m.loading = false
		m.days = msg.days
		m.detail = msg.detail
		m.clients = msg.clients
		if m.detail == nil || m.cursor >= len(m.detail.Events) {
			m.cursor = 0
		}
		if m.mode == calendarModeDay && (m.detail == nil || len(m.detail.Events) == 0) {
			m.mode = calendarModeGrid
		}
		return m, nil

	case eventDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Session deleted"
		return m, m.loadData()

	case exportDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("%s saved to %s", msg.what, msg.path)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		if m.mode == calendarModeDay {
			return m.updateDay(msg)
		}
		return m.updateGrid(msg)
	}

	return m, nil
}

func (m *CalendarModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Left):
		return m, m.selectDate(m.selected.AddDate(0, 0, -1))
	case key.Matches(msg, DefaultKeyMap.Right):
		return m, m.selectDate(m.selected.AddDate(0, 0, 1))
	case key.Matches(msg, DefaultKeyMap.Up):
		return m, m.selectDate(m.selected.AddDate(0, 0, -7))
	case key.Matches(msg, DefaultKeyMap.Down):
		return m, m.selectDate(m.selected.AddDate(0, 0, 7))
	case key.Matches(msg, DefaultKeyMap.PrevMonth):
		return m, m.selectDate(m.month.Prev().First())
	case key.Matches(msg, DefaultKeyMap.NextMonth):
		return m, m.selectDate(m.month.Next().First())
	case key.Matches(msg, DefaultKeyMap.Today):
		return m, m.selectDate(m.now())
	case key.Matches(msg, DefaultKeyMap.New):
		m.mode = calendarModeForm
		m.initForm(nil)
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Select), key.Matches(msg, DefaultKeyMap.Switch):
		if m.detail != nil && len(m.detail.Events) > 0 {
			m.mode = calendarModeDay
			m.cursor = 0
		}
	case msg.String() == "x":
		return m, m.exportCalendar()
	case msg.String() == "b":
		return m, m.exportBackup()
	}
	return m, nil
}

func (m *CalendarModel) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back), key.Matches(msg, DefaultKeyMap.Switch):
		m.mode = calendarModeGrid
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.detail != nil && m.cursor < len(m.detail.Events)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.New):
		m.mode = calendarModeForm
		m.initForm(nil)
	case key.Matches(msg, DefaultKeyMap.Select):
		if e, ok := m.selectedEvent(); ok {
			m.mode = calendarModeForm
			m.initForm(&e)
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if _, ok := m.selectedEvent(); ok {
			m.mode = calendarModeConfirmDelete
		}
	}
	return m, nil
}

func (m *CalendarModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.mode = calendarModeDay
	if keyMsg.String() == "y" || keyMsg.String() == "Y" {
		if e, ok := m.selectedEvent(); ok {
			return m, m.deleteEvent(e.ID)
		}
	}
	return m, nil
}

func (m *CalendarModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = calendarModeGrid
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved %s on %s", formatHours(msg.event.Hours), msg.event.Date)
		return m, m.loadData()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = calendarModeGrid
			m.err = nil
			return m, nil

		case "tab", "down":
			return m, m.focusField((m.fieldFocus + 1) % eventFieldCount)

		case "shift+tab", "up":
			return m, m.focusField((m.fieldFocus - 1 + eventFieldCount) % eventFieldCount)

		case "left", "right":
			step := 1
			if msg.String() == "left" {
				step = -1
			}
			switch m.fieldFocus {
			case eventFieldClient:
				if n := len(m.clients); n > 0 {
					m.clientIdx = (m.clientIdx + step + n) % n
				}
				return m, nil
			case eventFieldMode:
				if m.formMode == domain.WorkModeOnSite {
					m.formMode = domain.WorkModeRemoteWork
				} else {
					m.formMode = domain.WorkModeOnSite
				}
				return m, nil
			}

		case "enter":
			if m.fieldFocus == eventFieldCount-1 {
				return m, m.saveEvent()
			}
			return m, m.focusField(m.fieldFocus + 1)

		case "ctrl+s":
			return m, m.saveEvent()
		}
	}

	// Update the focused text input
	if m.isTextField(m.fieldFocus) {
		var cmd tea.Cmd
		m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *CalendarModel) isTextField(i int) bool {
	return i != eventFieldClient && i != eventFieldMode
}

func (m *CalendarModel) focusField(i int) tea.Cmd {
	if m.isTextField(m.fieldFocus) {
		m.fields[m.fieldFocus].Blur()
	}
	m.fieldFocus = i
	if m.isTextField(i) {
		return m.fields[i].Focus()
	}
	return nil
}

func (m *CalendarModel) View() string {
	if m.mode == calendarModeForm {
		return m.viewForm()
	}
	if m.loading && m.days == nil {
		return "Loading calendar..."
	}

	var s string
	s += titleStyle.Render(fmt.Sprintf("%s %d", m.month.Month, m.month.Year)) + "\n\n"
	s += m.viewGrid() + "\n"
	s += m.viewDay()

	if m.mode == calendarModeConfirmDelete {
		s += "\n" + lipgloss.NewStyle().Foreground(warningColor).Render("  Delete this session? (y/n)") + "\n"
	}
	if m.statusMsg != "" {
		s += "\n" + statusStyle.Render("  "+m.statusMsg) + "\n"
	}
	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	if m.mode == calendarModeDay {
		s += "\n" + helpStyle.Render("  j/k: select  enter: edit  n: new  d: delete  esc: back to grid")
	} else {
		s += "\n" + helpStyle.Render("  h/j/k/l: move  [/]: month  t: today  n: new  enter: day  x: export .ics  b: backup")
	}
	return s
}

func (m *CalendarModel) viewGrid() string {
	var header []string
	for _, d := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		header = append(header, weekdayStyle.Render(d))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	today := domain.FormatDate(m.now())
	selected := domain.FormatDate(m.selected)

	var cells []string
	for i, day := range m.days {
		cells = append(cells, m.renderCell(day, day.Key() == selected, day.Key() == today))
		if i%7 == 6 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *CalendarModel) renderCell(day service.CalendarDay, selected, today bool) string {
	number := fmt.Sprintf("%2d", day.Date.Day())
	if today {
		number = todayStyle.Render(number)
	}

	var dots string
	for i, marker := range day.Markers {
		if i == maxDots {
			dots += subtitleStyle.Render(fmt.Sprintf("+%d", len(day.Markers)-maxDots))
			break
		}
		dot := "●"
		if marker.Mode == domain.WorkModeRemoteWork {
			dot = "○"
		}
		dots += clientColor(marker.Client.Color).Render(dot)
	}

	style := cellStyle
	switch {
	case selected:
		style = selectedCellStyle
	case !day.InMonth:
		style = outsideCellStyle
	}
	return style.Render(number + "\n" + dots)
}

func (m *CalendarModel) viewDay() string {
	var s string
	s += "\n" + subtitleStyle.Render("  "+m.selected.Format("Monday 2 January 2006"))
	if m.detail == nil || len(m.detail.Events) == 0 {
		return s + "\n" + subtitleStyle.Render("  No sessions. Press 'n' to log one.") + "\n"
	}
	s += subtitleStyle.Render(fmt.Sprintf("  (%s)", formatHours(m.detail.Hours))) + "\n"

	for i, e := range m.detail.Events {
		ref := m.detail.Refs[i]
		line := fmt.Sprintf("%s %-20s %-7s %-8s %s",
			clientColor(ref.Color).Render("●"),
			truncateStr(ref.Name, 20),
			formatHours(e.Hours),
			e.Mode.Label(),
			truncateStr(e.Notes, 30),
		)
		if e.StartTime != "" && e.EndTime != "" {
			line += subtitleStyle.Render(fmt.Sprintf("  %s-%s", e.StartTime, e.EndTime))
		}
		if m.mode != calendarModeGrid && i == m.cursor {
			s += "> " + selectedStyle.Render(line) + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}
	return s
}

func (m *CalendarModel) viewForm() string {
	var s string
	if m.editingID == "" {
		s += titleStyle.Render("New Session") + "\n"
	} else {
		s += titleStyle.Render("Edit Session") + "\n"
	}
	s += subtitleStyle.Render("  "+m.selected.Format("Monday 2 January 2006")) + "\n\n"

	clientName := "(no clients yet)"
	if len(m.clients) > 0 {
		c := m.clients[m.clientIdx]
		clientName = clientColor(c.Color).Render("●") + " " + c.Name
	}

	s += renderField("Client:", renderChoice(clientName, m.fieldFocus == eventFieldClient), m.fieldFocus == eventFieldClient)
	s += renderField("Hours:", m.fields[eventFieldHours].View(), m.fieldFocus == eventFieldHours)
	s += renderField("Mode:", renderChoice(m.formMode.Label(), m.fieldFocus == eventFieldMode), m.fieldFocus == eventFieldMode)
	s += renderField("Notes:", m.fields[eventFieldNotes].View(), m.fieldFocus == eventFieldNotes)
	s += renderField("Start (HH:MM):", m.fields[eventFieldStart].View(), m.fieldFocus == eventFieldStart)
	s += renderField("End (HH:MM):", m.fields[eventFieldEnd].View(), m.fieldFocus == eventFieldEnd)

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ←/→: choose  ctrl+s: save  enter: next/save  esc: cancel")
	return s
}

// dateOnly drops the time of day, keeping the calendar date
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// writeFile creates path and its parent directories and fills it with write
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
