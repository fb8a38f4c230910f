package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/workcal/internal/domain"
	"github.com/spf13/cobra"
)

// now is replaced in tests
var now = time.Now

// resolveClientID accepts a client id or a case-insensitive name
func resolveClientID(ctx context.Context, idOrName string) (string, error) {
	client, err := appInstance.ClientService.Find(ctx, idOrName)
	if err != nil {
		return "", err
	}
	return client.ID, nil
}

// monthFlag reads --month, defaulting to the current month
func monthFlag(cmd *cobra.Command) (domain.YearMonth, error) {
	value, _ := cmd.Flags().GetString("month")
	if value == "" {
		return domain.MonthOf(now()), nil
	}
	return domain.ParseYearMonth(value)
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("%s %.2f", currency(), amount)
}

func currency() string {
	if appInstance != nil && appInstance.Config != nil && appInstance.Config.Billing.Currency != "" {
		return appInstance.Config.Billing.Currency
	}
	return "€"
}

func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%dh", int64(h))
	}
	return fmt.Sprintf("%.1fh", h)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func rule(width int) string {
	return strings.Repeat("-", width)
}
