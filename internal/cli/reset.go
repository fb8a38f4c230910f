package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andy/workcal/internal/domain"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored data",
	Long: `Reset stored data.

Examples:
  workcal reset events    # Delete all logged sessions, keep clients
  workcal reset all       # Wipe everything: sessions and clients`,
}

var resetEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Delete all logged sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL logged sessions. Continue?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		clients := appInstance.Repo.ListClients()
		if err := appInstance.Repo.ReplaceAll(context.Background(), clients, []domain.CalendarEvent{}); err != nil {
			return fmt.Errorf("failed to clear events: %w", err)
		}

		fmt.Fprintln(out, "All sessions have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete all clients and sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL clients and sessions. This cannot be undone. Continue?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		if err := appInstance.Repo.ReplaceAll(context.Background(), []domain.Client{}, []domain.CalendarEvent{}); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}

		fmt.Fprintln(out, "All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetEventsCmd)
	resetCmd.AddCommand(resetAllCmd)

	resetEventsCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	resetAllCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
