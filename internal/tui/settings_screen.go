package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/service"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldOutputDir = iota
	settingsFieldCurrency
	settingsFieldTaxRate
	settingsFieldModel
	settingsFieldCount
)

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string

	// save writes the config; replaced in tests
	save func() error
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
		save: a.SaveConfig,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) initForm() {
	m.fields = make([]textinput.Model, settingsFieldCount)
	cfg := m.app.Config

	m.fields[settingsFieldOutputDir] = newField("/path/to/exports", 256, 60)
	m.fields[settingsFieldOutputDir].SetValue(cfg.Export.OutputDir)

	m.fields[settingsFieldCurrency] = newField("€", 5, 10)
	m.fields[settingsFieldCurrency].SetValue(cfg.Billing.Currency)

	// Tax rate (display as percentage)
	m.fields[settingsFieldTaxRate] = newField("0.0", 10, 10)
	m.fields[settingsFieldTaxRate].SetValue(fmt.Sprintf("%.2f", cfg.Billing.TaxRate*100))

	m.fields[settingsFieldModel] = newField("gemini-pro", 60, 30)
	m.fields[settingsFieldModel].SetValue(cfg.Assistant.Model)

	m.fieldFocus = settingsFieldOutputDir
	m.fields[settingsFieldOutputDir].Focus()
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		outputDir := strings.TrimSpace(m.fields[settingsFieldOutputDir].Value())
		currency := strings.TrimSpace(m.fields[settingsFieldCurrency].Value())
		taxRateStr := strings.TrimSpace(m.fields[settingsFieldTaxRate].Value())
		model := strings.TrimSpace(m.fields[settingsFieldModel].Value())

		if outputDir == "" {
			return settingsSavedMsg{err: fmt.Errorf("output directory is required")}
		}
		if currency == "" {
			return settingsSavedMsg{err: fmt.Errorf("currency is required")}
		}

		taxRate, err := strconv.ParseFloat(taxRateStr, 64)
		if err != nil || taxRate < 0 || taxRate > 100 {
			return settingsSavedMsg{err: fmt.Errorf("tax rate must be between 0 and 100")}
		}

		// Update config (tax rate stored as decimal)
		cfg := m.app.Config
		cfg.Export.OutputDir = outputDir
		cfg.Billing.Currency = currency
		cfg.Billing.TaxRate = taxRate / 100
		if model != "" {
			cfg.Assistant.Model = model
		}

		// Statements pick up the new billing settings right away
		m.app.StatementService = service.NewStatementService(m.app.Repo, cfg.Billing.TaxRate, cfg.Billing.Currency)

		if err := m.save(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		if msg.String() == "enter" {
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	value := lipgloss.NewStyle().Foreground(primaryColor)

	s += subtitleStyle.Render("  Billing & Export") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Export Directory:"), value.Render(cfg.Export.OutputDir))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Currency:"), value.Render(cfg.Billing.Currency))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Tax Rate:"), value.Render(fmt.Sprintf("%.2f%%", cfg.Billing.TaxRate*100)))
	s += "\n"

	s += subtitleStyle.Render("  Assistant") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Responder:"), value.Render(m.app.Chat.Responder()))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Model:"), value.Render(cfg.Assistant.Model))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("API Key Variable:"), value.Render(cfg.Assistant.APIKeyEnv))
	s += "\n"

	s += subtitleStyle.Render("  Storage") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Database:"), value.Render(cfg.Database.Path))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Log File:"), value.Render(cfg.Log.Path))

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  enter: edit settings  (model changes apply on restart)")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Edit Settings") + "\n\n"

	labels := []string{"Export Directory:", "Currency:", "Tax Rate (%):", "Assistant Model:"}
	for i, label := range labels {
		s += renderField(label, m.fields[i].View(), i == m.fieldFocus)
	}

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	s += helpStyle.Render("  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel")

	return s
}
