package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// formatHours formats hours as "Xh Ym"
func formatHours(hours float64) string {
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// formatMoney formats money as "€X,XXX.XX" with comma separators
func formatMoney(symbol string, amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := fmt.Sprintf("%.2f", amount)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	// Add commas to integer part
	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := symbol
	if negative {
		prefix = "-" + symbol
	}
	return prefix + string(result) + decPart
}

// truncateStr cuts s to maxLen runes, ending with an ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// parseAmount parses an optional numeric form field. Blank means zero.
func parseAmount(label, value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: %s", label, value)
	}
	return v, nil
}

// newField creates a form text input
func newField(placeholder string, limit, width int) textinput.Model {
	f := textinput.New()
	f.Placeholder = placeholder
	f.CharLimit = limit
	f.Width = width
	return f
}

// renderField renders a labelled form row with a focus indicator
func renderField(label, body string, focused bool) string {
	indicator := "  "
	labelStyle := subtitleStyle
	if focused {
		indicator = "> "
		labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	}
	return fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), body)
}

// renderChoice renders a left/right selector value
func renderChoice(value string, focused bool) string {
	if focused {
		return lipgloss.NewStyle().Foreground(primaryColor).Render("◀ " + value + " ▶")
	}
	return "  " + value
}

// bar renders a horizontal bar filled to pct of width
func bar(pct float64, width int, color lipgloss.TerminalColor) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("237")).Render(strings.Repeat("░", width-filled))
}
