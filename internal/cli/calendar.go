package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the month grid",
	Long: `Print the month as a Monday-first grid. Each day shows the hours logged;
days outside the month are dimmed with dots.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ym, err := monthFlag(cmd)
		if err != nil {
			return err
		}

		days := appInstance.ReportService.Calendar(context.Background(), ym)
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s %d\n", ym.Month, ym.Year)
		fmt.Fprintln(out, " Mon     Tue     Wed     Thu     Fri     Sat     Sun")

		var line strings.Builder
		for i, d := range days {
			cell := "  .    "
			if d.InMonth {
				var hours float64
				for _, m := range d.Markers {
					hours += m.Hours
				}
				cell = fmt.Sprintf(" %2d", d.Date.Day())
				if hours > 0 {
					cell += fmt.Sprintf(" %-4s", formatHours(hours))
				} else {
					cell += "     "
				}
			}
			line.WriteString(cell)
			if i%7 == 6 {
				fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
				line.Reset()
			} else {
				line.WriteString(" ")
			}
		}
		return nil
	},
}

func init() {
	calendarCmd.Flags().String("month", "", "Month (YYYY-MM, default current)")
}
