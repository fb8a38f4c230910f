package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

// StatsModel displays the monthly statistics and per-client statements
type StatsModel struct {
	app   *app.App
	month domain.YearMonth

	summary   *service.MonthSummary
	cursor    int
	statement *domain.Statement

	loading bool
	err     error
}

type statsDataMsg struct {
	summary *service.MonthSummary
}

type statementMsg struct {
	statement *domain.Statement
	err       error
}

// NewStatsModel creates a new statistics screen on the current month
func NewStatsModel(a *app.App, now func() time.Time) tea.Model {
	return &StatsModel{
		app:     a,
		month:   domain.MonthOf(now()),
		loading: true,
	}
}

func (m *StatsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *StatsModel) loadData() tea.Cmd {
	month := m.month
	return func() tea.Msg {
		return statsDataMsg{summary: m.app.ReportService.MonthSummary(context.Background(), month)}
	}
}

func (m *StatsModel) loadStatement(clientID string) tea.Cmd {
	month := m.month
	return func() tea.Msg {
		st, err := m.app.StatementService.Build(context.Background(), clientID, month)
		return statementMsg{statement: st, err: err}
	}
}

func (m *StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case statsDataMsg:
		m.loading = false
		m.summary = msg.summary
		m.statement = nil
		if m.cursor >= len(m.summary.Revenue) {
			m.cursor = max(0, len(m.summary.Revenue)-1)
		}
		return m, nil

	case statementMsg:
		m.err = msg.err
		m.statement = msg.statement
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.PrevMonth), key.Matches(msg, DefaultKeyMap.Left):
			m.month = m.month.Prev()
			m.loading = true
			return m, m.loadData()
		case key.Matches(msg, DefaultKeyMap.NextMonth), key.Matches(msg, DefaultKeyMap.Right):
			m.month = m.month.Next()
			m.loading = true
			return m, m.loadData()
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
				m.statement = nil
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.summary != nil && m.cursor < len(m.summary.Revenue)-1 {
				m.cursor++
				m.statement = nil
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.summary != nil && m.cursor < len(m.summary.Revenue) {
				return m, m.loadStatement(m.summary.Revenue[m.cursor].ClientID)
			}
		case key.Matches(msg, DefaultKeyMap.Back):
			m.statement = nil
		}
	}

	return m, nil
}

func (m *StatsModel) View() string {
	if m.loading || m.summary == nil {
		return "Loading statistics..."
	}

	currency := m.app.Config.Billing.Currency
	sum := m.summary
	t := sum.Totals
	labelStyle := lipgloss.NewStyle().Bold(true).Width(16)

	var s string
	s += titleStyle.Render(fmt.Sprintf("%s %d", m.month.Month, m.month.Year)) + "\n\n"

	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Sessions:"), valueStyle.Render(fmt.Sprintf("%d", t.EventCount)))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Hours:"),
		valueStyle.Render(fmt.Sprintf("%s (%.1f days)", formatHours(t.TotalHours), t.TotalDays)))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Revenue:"), valueStyle.Render(formatMoney(currency, sum.TotalRevenue)))
	s += "\n"

	s += subtitleStyle.Render("  Work mode") + "\n"
	s += fmt.Sprintf("  %s %s %3.0f%%  %s, %d days\n", labelStyle.Render("On site"),
		bar(t.OnSiteShare(), barWidth, primaryColor), t.OnSiteShare(), formatHours(t.OnSiteHours), sum.OnSiteDays)
	s += fmt.Sprintf("  %s %s %3.0f%%  %s, %d days\n", labelStyle.Render("Remote"),
		bar(t.RemoteShare(), barWidth, accentColor), t.RemoteShare(), formatHours(t.RemoteHours), sum.RemoteDays)
	s += "\n"

	p := sum.Productivity
	s += subtitleStyle.Render("  Productivity") + "\n"
	s += fmt.Sprintf("  %s %s %3.0f%%  %d of %d weekdays\n", labelStyle.Render("Days worked"),
		bar(p.Ratio, barWidth, successColor), p.Ratio, p.WorkedDays, p.AvailableWeekdays)
	s += "\n"

	s += subtitleStyle.Render("  Revenue by client") + "\n"
	if len(sum.Revenue) == 0 {
		s += subtitleStyle.Render("  No billable sessions this month") + "\n"
	}
	for i, r := range sum.Revenue {
		indicator := "  "
		name := truncateStr(r.Name, 15)
		if i == m.cursor {
			indicator = "> "
			name = lipgloss.NewStyle().Bold(true).Render(name)
		}
		s += fmt.Sprintf("%s%s %s %3.0f%%  %s\n", indicator,
			lipgloss.NewStyle().Width(16).Render(name),
			bar(r.Share, barWidth, clientColor(r.Color).GetForeground()), r.Share, formatMoney(currency, r.Revenue))
	}

	if m.statement != nil {
		s += "\n" + m.viewStatement()
	}
	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n"
	}

	s += "\n" + helpStyle.Render("  [/]: month  j/k: client  enter: statement  esc: close statement")
	return s
}

func (m *StatsModel) viewStatement() string {
	st := m.statement
	money := func(v float64) string { return formatMoney(st.Currency, v) }

	var s string
	s += titleStyle.Render("Statement "+st.Number) + "\n"
	s += fmt.Sprintf("%s, %s %d\n\n", st.Client.Name, st.Month.Month, st.Month.Year)
	for _, l := range st.Lines {
		s += fmt.Sprintf("%s  %-8s %-7s %s\n", l.Date, l.Mode.Label(), formatHours(l.Hours), money(l.Amount))
	}
	s += fmt.Sprintf("\nSubtotal %s\n", money(st.Subtotal))
	if st.TaxRate > 0 {
		s += fmt.Sprintf("Tax %.0f%%  %s\n", st.TaxRate*100, money(st.TaxAmount))
	}
	s += lipgloss.NewStyle().Bold(true).Render("Total "+money(st.Total))
	return boxStyle.Render(s)
}
