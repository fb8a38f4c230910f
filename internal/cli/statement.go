package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statementCmd = &cobra.Command{
	Use:   "statement [client_id_or_name]",
	Short: "Show a client's monthly billing statement",
	Long:  `Show the sessions logged for a client in a month, billed at the daily rate with tax.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return err
		}
		ym, err := monthFlag(cmd)
		if err != nil {
			return err
		}

		st, err := appInstance.StatementService.Build(ctx, clientID, ym)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		money := func(v float64) string { return fmt.Sprintf("%s %.2f", st.Currency, v) }

		fmt.Fprintf(out, "Statement %s\n", st.Number)
		fmt.Fprintf(out, "Client: %s", st.Client.Name)
		if st.Client.VATNumber != "" {
			fmt.Fprintf(out, " (VAT %s)", st.Client.VATNumber)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Period: %s %d\n", st.Month.Month, st.Month.Year)
		fmt.Fprintln(out, rule(70))

		if len(st.Lines) == 0 {
			fmt.Fprintln(out, "No sessions logged")
			return nil
		}

		fmt.Fprintf(out, "%-12s %-8s %-7s %-6s %-14s %s\n", "Date", "Mode", "Hours", "Days", "Amount", "Notes")
		for _, l := range st.Lines {
			fmt.Fprintf(out, "%-12s %-8s %-7s %-6.2f %-14s %s\n",
				l.Date, l.Mode.Label(), formatHours(l.Hours), l.Days, money(l.Amount), truncate(l.Notes, 20))
		}
		fmt.Fprintln(out, rule(70))
		fmt.Fprintf(out, "Hours:     %s\n", formatHours(st.TotalHours()))
		fmt.Fprintf(out, "Subtotal:  %s\n", money(st.Subtotal))
		fmt.Fprintf(out, "Tax (%.0f%%): %s\n", st.TaxRate*100, money(st.TaxAmount))
		fmt.Fprintf(out, "Total:     %s\n", money(st.Total))
		return nil
	},
}

func init() {
	statementCmd.Flags().String("month", "", "Month (YYYY-MM, default current)")
}
