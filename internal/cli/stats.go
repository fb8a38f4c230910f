package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show monthly statistics",
	Long:  `Show hours, days, work mode split, revenue per client and productivity for a month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ym, err := monthFlag(cmd)
		if err != nil {
			return err
		}

		summary := appInstance.ReportService.MonthSummary(context.Background(), ym)
		out := cmd.OutOrStdout()
		t := summary.Totals

		fmt.Fprintf(out, "Statistics for %s %d\n", ym.Month, ym.Year)
		fmt.Fprintln(out, rule(50))
		fmt.Fprintf(out, "Sessions:      %d\n", t.EventCount)
		fmt.Fprintf(out, "Hours:         %s (%.1f days)\n", formatHours(t.TotalHours), t.TotalDays)
		fmt.Fprintf(out, "On site:       %s (%.0f%%, %d days)\n", formatHours(t.OnSiteHours), t.OnSiteShare(), summary.OnSiteDays)
		fmt.Fprintf(out, "Remote:        %s (%.0f%%, %d days)\n", formatHours(t.RemoteHours), t.RemoteShare(), summary.RemoteDays)
		fmt.Fprintf(out, "Productivity:  %d of %d weekdays (%.0f%%)\n",
			summary.Productivity.WorkedDays, summary.Productivity.AvailableWeekdays, summary.Productivity.Ratio)
		fmt.Fprintln(out)

		if len(summary.Revenue) == 0 {
			fmt.Fprintln(out, "No revenue this month")
			return nil
		}

		fmt.Fprintf(out, "%-20s %-8s %-8s %-14s %s\n", "Client", "Hours", "Days", "Revenue", "Share")
		fmt.Fprintln(out, rule(60))
		for _, r := range summary.Revenue {
			fmt.Fprintf(out, "%-20s %-8s %-8.1f %-14s %.0f%%\n",
				truncate(r.Name, 20), formatHours(r.Hours), r.Days, formatMoney(r.Revenue), r.Share)
		}
		fmt.Fprintln(out, rule(60))
		fmt.Fprintf(out, "Total revenue: %s\n", formatMoney(summary.TotalRevenue))
		return nil
	},
}

func init() {
	statsCmd.Flags().String("month", "", "Month (YYYY-MM, default current)")
}
