package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clientMode represents the current screen mode
type clientMode int

const (
	clientModeList clientMode = iota
	clientModeNew
	clientModeEdit
	clientModeConfirmDelete
)

// form field indices
const (
	fieldName = iota
	fieldType
	fieldVAT
	fieldRate
	fieldDays
	fieldValue
	fieldColor
	fieldCount
)

// ClientsModel displays a navigable list of clients with create/edit forms
type ClientsModel struct {
	app       *app.App
	rows      []service.ClientOverview
	cursor    int
	loading   bool
	err       error
	statusMsg string
	bar       progress.Model

	// Form state
	mode          clientMode
	fields        []textinput.Model
	fieldFocus    int
	formType      domain.ClientType
	editingID     string // empty for new client
	autoNewClient bool   // open new client form after data loads
}

type clientsDataMsg struct {
	rows []service.ClientOverview
}

type clientSavedMsg struct {
	name string
	err  error
}

type clientDeletedMsg struct {
	name string
	err  error
}

// NewClientsModel creates a new clients screen model
func NewClientsModel(a *app.App) tea.Model {
	return &ClientsModel{
		app:     a,
		loading: true,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
	}
}

// IsCapturingInput returns true when the form is active
func (m *ClientsModel) IsCapturingInput() bool {
	return m.mode != clientModeList
}

func (m *ClientsModel) Init() tea.Cmd {
	return m.loadClients()
}

func (m *ClientsModel) loadClients() tea.Cmd {
	return func() tea.Msg {
		return clientsDataMsg{rows: m.app.ReportService.ClientOverview(context.Background())}
	}
}

func (m *ClientsModel) initForm(editing *domain.Client) {
	m.fields = make([]textinput.Model, fieldCount)
	m.fields[fieldName] = newField("Client name", 100, 40)
	m.fields[fieldVAT] = newField("VAT number (sole proprietors)", 30, 30)
	m.fields[fieldRate] = newField("350.00", 10, 15)
	m.fields[fieldDays] = newField("0 (no cap)", 6, 10)
	m.fields[fieldValue] = newField("Optional", 12, 15)
	m.fields[fieldColor] = newField("#0ea5e9 (random)", 7, 10)

	m.formType = domain.ClientTypeCompany
	m.editingID = ""

	// Pre-fill for editing
	if editing != nil {
		m.editingID = editing.ID
		m.formType = editing.Type
		m.fields[fieldName].SetValue(editing.Name)
		m.fields[fieldVAT].SetValue(editing.VATNumber)
		m.fields[fieldRate].SetValue(fmt.Sprintf("%.2f", editing.DailyRate))
		if editing.TotalDaysContracted > 0 {
			m.fields[fieldDays].SetValue(strconv.FormatFloat(editing.TotalDaysContracted, 'f', -1, 64))
		}
		if editing.TotalContractValue > 0 {
			m.fields[fieldValue].SetValue(fmt.Sprintf("%.2f", editing.TotalContractValue))
		}
		m.fields[fieldColor].SetValue(editing.Color)
	}

	m.fieldFocus = fieldName
}

func (m *ClientsModel) saveClient() tea.Cmd {
	input := service.ClientInput{
		ID:        m.editingID,
		Name:      m.fields[fieldName].Value(),
		Type:      string(m.formType),
		VATNumber: m.fields[fieldVAT].Value(),
		Color:     m.fields[fieldColor].Value(),
	}

	var err error
	if input.DailyRate, err = parseAmount("rate", m.fields[fieldRate].Value()); err != nil {
		return func() tea.Msg { return clientSavedMsg{err: err} }
	}
	if input.TotalDaysContracted, err = parseAmount("contracted days", m.fields[fieldDays].Value()); err != nil {
		return func() tea.Msg { return clientSavedMsg{err: err} }
	}
	if input.TotalContractValue, err = parseAmount("contract value", m.fields[fieldValue].Value()); err != nil {
		return func() tea.Msg { return clientSavedMsg{err: err} }
	}

	return func() tea.Msg {
		client, err := m.app.ClientService.Save(context.Background(), input)
		return clientSavedMsg{name: client.Name, err: err}
	}
}

func (m *ClientsModel) deleteClient(c domain.Client) tea.Cmd {
	return func() tea.Msg {
		return clientDeletedMsg{name: c.Name, err: m.app.ClientService.Delete(context.Background(), c.ID)}
	}
}

func (m *ClientsModel) openForm(editing *domain.Client) tea.Cmd {
	if editing == nil {
		m.mode = clientModeNew
	} else {
		m.mode = clientModeEdit
	}
	m.initForm(editing)
	return m.fields[fieldName].Focus()
}

func (m *ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle OpenNewClientFormMsg at the top so it works regardless of mode
	if _, ok := msg.(OpenNewClientFormMsg); ok {
		if m.loading {
			// Data hasn't loaded yet; set flag to auto-open form when it does
			m.autoNewClient = true
			return m, nil
		}
		return m, m.openForm(nil)
	}

	switch m.mode {
	case clientModeNew, clientModeEdit:
		return m.updateForm(msg)
	case clientModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadClients()

	case clientsDataMsg:
		m.loading = false
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}
		// Auto-open new client form on first run
		if m.autoNewClient {
			m.autoNewClient = false
			return m, m.openForm(nil)
		}
		return m, nil

	case clientDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Deleted: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openForm(nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			// Enter key opens edit form for selected client
			if m.cursor < len(m.rows) {
				c := m.rows[m.cursor].Client
				return m, m.openForm(&c)
			}
		case key.Matches(msg, DefaultKeyMap.Delete):
			if m.cursor < len(m.rows) {
				m.mode = clientModeConfirmDelete
			}
		}
	}

	return m, nil
}

func (m *ClientsModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.mode = clientModeList
	if (keyMsg.String() == "y" || keyMsg.String() == "Y") && m.cursor < len(m.rows) {
		return m, m.deleteClient(m.rows[m.cursor].Client)
	}
	return m, nil
}

func (m *ClientsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = clientModeList
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadClients()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// Cancel form
			m.mode = clientModeList
			m.err = nil
			return m, nil

		case "tab", "down":
			return m, m.focusField((m.fieldFocus + 1) % fieldCount)

		case "shift+tab", "up":
			return m, m.focusField((m.fieldFocus - 1 + fieldCount) % fieldCount)

		case "left", "right", " ":
			if m.fieldFocus == fieldType {
				if m.formType == domain.ClientTypeCompany {
					m.formType = domain.ClientTypeSoleProprietor
				} else {
					m.formType = domain.ClientTypeCompany
				}
				return m, nil
			}

		case "enter":
			// If on last field or explicit submit, save
			if m.fieldFocus == fieldCount-1 {
				return m, m.saveClient()
			}
			return m, m.focusField(m.fieldFocus + 1)

		case "ctrl+s":
			// Save from any field
			return m, m.saveClient()
		}
	}

	// Update the focused text input
	if m.fieldFocus == fieldType {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *ClientsModel) focusField(i int) tea.Cmd {
	if m.fieldFocus != fieldType {
		m.fields[m.fieldFocus].Blur()
	}
	m.fieldFocus = i
	if i == fieldType {
		return nil
	}
	return m.fields[i].Focus()
}

func (m *ClientsModel) View() string {
	if m.mode == clientModeNew || m.mode == clientModeEdit {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *ClientsModel) viewForm() string {
	var s string

	if m.mode == clientModeNew {
		if len(m.rows) == 0 {
			s += titleStyle.Render("Welcome to workcal!") + "\n"
			s += subtitleStyle.Render("  Let's set up your first client to get started.") + "\n\n"
		} else {
			s += titleStyle.Render("New Client") + "\n\n"
		}
	} else {
		s += titleStyle.Render("Edit Client") + "\n\n"
	}

	typeLabel := "Company"
	if m.formType == domain.ClientTypeSoleProprietor {
		typeLabel = "Sole proprietor"
	}

	s += renderField("Name:", m.fields[fieldName].View(), m.fieldFocus == fieldName)
	s += renderField("Type:", renderChoice(typeLabel, m.fieldFocus == fieldType), m.fieldFocus == fieldType)
	if m.formType == domain.ClientTypeSoleProprietor {
		s += renderField("VAT number:", m.fields[fieldVAT].View(), m.fieldFocus == fieldVAT)
	} else {
		s += renderField("VAT number:", subtitleStyle.Render("(companies only keep a name)"), m.fieldFocus == fieldVAT)
	}
	s += renderField(fmt.Sprintf("Daily rate (%s):", m.app.Config.Billing.Currency), m.fields[fieldRate].View(), m.fieldFocus == fieldRate)
	s += renderField("Contracted days:", m.fields[fieldDays].View(), m.fieldFocus == fieldDays)
	s += renderField("Contract value:", m.fields[fieldValue].View(), m.fieldFocus == fieldValue)
	s += renderField("Color:", m.fields[fieldColor].View(), m.fieldFocus == fieldColor)

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ←/→: type  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}

func (m *ClientsModel) viewList() string {
	if m.loading {
		return "Loading clients..."
	}

	var s string
	s += titleStyle.Render("Clients") + "\n\n"

	// Status message
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.rows) == 0 {
		s += subtitleStyle.Render("  No clients yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, row := range m.rows {
		s += m.renderClient(i, row) + "\n"
	}

	if m.mode == clientModeConfirmDelete {
		s += "\n" + lipgloss.NewStyle().Foreground(warningColor).
			Render("  Delete this client? Logged sessions are kept. (y/n)") + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  d: delete")

	return s
}

func (m *ClientsModel) renderClient(index int, row service.ClientOverview) string {
	selected := index == m.cursor
	client := row.Client
	currency := m.app.Config.Billing.Currency

	// Build row
	indicator := "  "
	if selected {
		indicator = "> "
	}

	kind := "Company"
	if client.Type == domain.ClientTypeSoleProprietor {
		kind = "Sole proprietor"
		if client.VATNumber != "" {
			kind += " · VAT " + client.VATNumber
		}
	}

	line1 := fmt.Sprintf("%s%s %s", indicator, clientColor(client.Color).Render("●"), client.Name)
	line2 := fmt.Sprintf("    %s  |  Rate: %s/day  |  %d sessions, %s (%.1f days)  |  %s",
		kind,
		formatMoney(currency, client.DailyRate),
		row.Stats.EventCount,
		formatHours(row.Stats.Hours),
		row.Stats.Days,
		formatMoney(currency, row.Stats.Days*client.DailyRate),
	)

	var line3 string
	if row.HasProgress {
		line3 = fmt.Sprintf("    %s %3.0f%% of %.0f days", m.bar.ViewAs(row.Progress/100), row.Progress, client.TotalDaysContracted)
	}

	// Apply styling
	nameStyle := lipgloss.NewStyle()
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
	}

	result := nameStyle.Render(line1) + "\n" + subtitleStyle.Render(line2)
	if line3 != "" {
		result += "\n" + line3
	}

	return result
}
