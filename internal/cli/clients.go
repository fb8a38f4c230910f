package cli

import (
	"context"
	"fmt"

	"github.com/andy/workcal/internal/service"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and delete clients.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		rows := appInstance.ReportService.ClientOverview(ctx)
		if len(rows) == 0 {
			fmt.Fprintln(out, "No clients found")
			return nil
		}

		fmt.Fprintf(out, "%-10s %-20s %-15s %-12s %-8s %-10s\n", "ID", "Name", "Type", "Daily Rate", "Days", "Contract")
		fmt.Fprintln(out, rule(80))

		for _, row := range rows {
			contract := "-"
			if row.HasProgress {
				contract = fmt.Sprintf("%.0f%%", row.Progress)
			}
			fmt.Fprintf(out, "%-10s %-20s %-15s %-12s %-8.1f %-10s\n",
				truncate(row.Client.ID, 10),
				truncate(row.Client.Name, 20),
				row.Client.Type,
				formatMoney(row.Client.DailyRate),
				row.Stats.Days,
				contract,
			)
		}
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		input := service.ClientInput{Name: args[0]}
		input.DailyRate, _ = cmd.Flags().GetFloat64("rate")
		input.Type, _ = cmd.Flags().GetString("type")
		input.VATNumber, _ = cmd.Flags().GetString("vat")
		input.TotalDaysContracted, _ = cmd.Flags().GetFloat64("days")
		input.TotalContractValue, _ = cmd.Flags().GetFloat64("value")
		input.Color, _ = cmd.Flags().GetString("color")

		client, err := appInstance.ClientService.Save(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created client '%s' (ID: %s, Rate: %s/day)\n", client.Name, client.ID, formatMoney(client.DailyRate))
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id_or_name]",
	Short: "Edit a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := appInstance.ClientService.Find(ctx, args[0])
		if err != nil {
			return err
		}

		input := service.ClientInput{
			ID:                  client.ID,
			Name:                client.Name,
			Type:                string(client.Type),
			VATNumber:           client.VATNumber,
			DailyRate:           client.DailyRate,
			TotalDaysContracted: client.TotalDaysContracted,
			Color:               client.Color,
			TotalContractValue:  client.TotalContractValue,
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			input.Name, _ = flags.GetString("name")
		}
		if flags.Changed("rate") {
			input.DailyRate, _ = flags.GetFloat64("rate")
		}
		if flags.Changed("type") {
			input.Type, _ = flags.GetString("type")
		}
		if flags.Changed("vat") {
			input.VATNumber, _ = flags.GetString("vat")
		}
		if flags.Changed("days") {
			input.TotalDaysContracted, _ = flags.GetFloat64("days")
		}
		if flags.Changed("value") {
			input.TotalContractValue, _ = flags.GetFloat64("value")
		}
		if flags.Changed("color") {
			input.Color, _ = flags.GetString("color")
		}

		updated, err := appInstance.ClientService.Save(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated client '%s'\n", updated.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_name]",
	Short: "Delete a client",
	Long:  `Delete a client. Its logged days are kept and shown as an unknown client.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := appInstance.ClientService.Find(ctx, args[0])
		if err != nil {
			return err
		}
		if err := appInstance.ClientService.Delete(ctx, client.ID); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted client '%s'\n", client.Name)
		return nil
	},
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	for _, c := range []*cobra.Command{clientsAddCmd, clientsEditCmd} {
		c.Flags().Float64("rate", 0, "Daily rate")
		c.Flags().String("type", "Company", "Client type (Company or SoleProprietor)")
		c.Flags().String("vat", "", "VAT number (sole proprietors only)")
		c.Flags().Float64("days", 0, "Contracted days (0 for no cap)")
		c.Flags().Float64("value", 0, "Total contract value")
		c.Flags().String("color", "", "Display color, e.g. #0ea5e9")
	}
	clientsAddCmd.MarkFlagRequired("rate")
	clientsEditCmd.Flags().String("name", "", "New name")
}
