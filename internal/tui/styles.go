package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("39")  // Blue
	accentColor  = lipgloss.Color("205") // Pink
	mutedColor   = lipgloss.Color("241") // Gray
	successColor = lipgloss.Color("76")  // Green
	warningColor = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("196") // Red

	// Base styles
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117")) // Bright cyan
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(primaryColor).Foreground(lipgloss.Color("0"))
	statusStyle   = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	valueStyle    = lipgloss.NewStyle().Foreground(accentColor)

	// Box styles
	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	// Layout
	borderColor    = lipgloss.Color("63") // Soft purple
	appBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	// Header/Footer
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true) // Bright yellow

	// Calendar grid
	cellStyle         = lipgloss.NewStyle().Width(9).Height(2).Padding(0, 1)
	outsideCellStyle  = cellStyle.Foreground(lipgloss.Color("238"))
	selectedCellStyle = cellStyle.Background(lipgloss.Color("236")).Bold(true)
	todayStyle        = lipgloss.NewStyle().Underline(true).Foreground(accentColor)
	weekdayStyle      = lipgloss.NewStyle().Width(9).Padding(0, 1).Foreground(mutedColor)

	// Assistant
	userBubbleStyle      = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	assistantBubbleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// clientColor renders text in a client's display color
func clientColor(hex string) lipgloss.Style {
	if hex == "" {
		return lipgloss.NewStyle().Foreground(mutedColor)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}
