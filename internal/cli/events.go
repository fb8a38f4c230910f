package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andy/workcal/internal/domain"
	"github.com/andy/workcal/internal/service"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"days"},
	Short:   "Manage logged work days",
	Long:    `List, add, edit, and delete the work sessions logged on the calendar.`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work sessions",
	Long: `List work sessions. Filter with --date, --client or --month;
without filters the current month is listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		flags := cmd.Flags()

		var events []domain.CalendarEvent
		switch {
		case flags.Changed("date"):
			date, _ := flags.GetString("date")
			if _, err := domain.ParseDate(date); err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			events = appInstance.EventService.Day(ctx, date)
		case flags.Changed("client"):
			name, _ := flags.GetString("client")
			clientID, err := resolveClientID(ctx, name)
			if err != nil {
				return err
			}
			events = appInstance.EventService.ForClient(ctx, clientID)
		default:
			ym, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			events = appInstance.EventService.Month(ctx, ym)
		}

		printEvents(cmd.OutOrStdout(), appInstance.ClientService.List(ctx), events)
		return nil
	},
}

func printEvents(out io.Writer, clients []domain.Client, events []domain.CalendarEvent) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events found")
		return
	}

	fmt.Fprintf(out, "%-10s %-12s %-20s %-7s %-8s %s\n", "ID", "Date", "Client", "Hours", "Mode", "Notes")
	fmt.Fprintln(out, rule(80))

	var totalHours float64
	for _, e := range events {
		ref := service.ResolveClient(clients, e.ClientID)
		fmt.Fprintf(out, "%-10s %-12s %-20s %-7s %-8s %s\n",
			truncate(e.ID, 10),
			e.Date,
			truncate(ref.Name, 20),
			formatHours(e.Hours),
			e.Mode.Label(),
			truncate(e.Notes, 30),
		)
		totalHours += e.Hours
	}

	fmt.Fprintln(out, rule(80))
	fmt.Fprintf(out, "Total: %d events, %s (%.1f days)\n", len(events), formatHours(totalHours), totalHours/domain.HoursPerDay)
}

var eventsAddCmd = &cobra.Command{
	Use:   "add [client_id_or_name] [date]",
	Short: "Log a work session",
	Long: `Log a work session for a client on a YYYY-MM-DD date.
Omitting --hours logs a full 8 hour day.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return err
		}

		input := service.EventInput{ClientID: clientID, Date: args[1]}
		readEventFlags(cmd, &input, true)

		event, err := appInstance.EventService.Save(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s (ID: %s)\n", formatHours(event.Hours), event.Date, event.ID)
		return nil
	},
}

var eventsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a work session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		event, err := appInstance.EventService.Get(ctx, args[0])
		if err != nil {
			return err
		}

		input := service.EventInput{
			ID:        event.ID,
			Date:      event.Date,
			ClientID:  event.ClientID,
			Hours:     event.Hours,
			Mode:      string(event.Mode),
			Notes:     event.Notes,
			IsFullDay: event.IsFullDay,
			StartTime: event.StartTime,
			EndTime:   event.EndTime,
		}

		if cmd.Flags().Changed("client") {
			name, _ := cmd.Flags().GetString("client")
			if input.ClientID, err = resolveClientID(ctx, name); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("date") {
			input.Date, _ = cmd.Flags().GetString("date")
		}
		readEventFlags(cmd, &input, false)

		updated, err := appInstance.EventService.Save(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated event %s: %s on %s\n", updated.ID, formatHours(updated.Hours), updated.Date)
		return nil
	},
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a work session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.EventService.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
		return nil
	},
}

var eventsImportCmd = &cobra.Command{
	Use:   "import [client] [file.ics]",
	Short: "Log the events of an iCalendar file as sessions for a client",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open calendar: %w", err)
		}
		defer f.Close()

		result, err := appInstance.ExportService.Import(ctx, clientID, f)
		if err != nil {
			return fmt.Errorf("failed to import calendar: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events, skipped %d\n", result.Added, result.Skipped)
		return nil
	},
}

// readEventFlags copies the session flags into input. Unless all is set,
// only flags given on the command line are applied.
func readEventFlags(cmd *cobra.Command, input *service.EventInput, all bool) {
	flags := cmd.Flags()
	if all || flags.Changed("hours") {
		input.Hours, _ = flags.GetFloat64("hours")
		input.IsFullDay = input.Hours == 0 || input.Hours == domain.HoursPerDay
	}
	if all || flags.Changed("mode") {
		input.Mode, _ = flags.GetString("mode")
	}
	if all || flags.Changed("notes") {
		notes, _ := flags.GetString("notes")
		input.Notes = strings.TrimSpace(notes)
	}
	if all || flags.Changed("start") {
		input.StartTime, _ = flags.GetString("start")
	}
	if all || flags.Changed("end") {
		input.EndTime, _ = flags.GetString("end")
	}
}

func init() {
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsEditCmd)
	eventsCmd.AddCommand(eventsDeleteCmd)
	eventsCmd.AddCommand(eventsImportCmd)

	eventsListCmd.Flags().String("date", "", "Only this date (YYYY-MM-DD)")
	eventsListCmd.Flags().String("client", "", "Only this client (ID or name)")
	eventsListCmd.Flags().String("month", "", "Month to list (YYYY-MM, default current)")

	for _, c := range []*cobra.Command{eventsAddCmd, eventsEditCmd} {
		c.Flags().Float64("hours", 0, "Hours worked (default full day)")
		c.Flags().String("mode", "OnSite", "Work mode (OnSite or RemoteWork)")
		c.Flags().String("notes", "", "Notes")
		c.Flags().String("start", "", "Start time (HH:MM)")
		c.Flags().String("end", "", "End time (HH:MM)")
	}
	eventsEditCmd.Flags().String("client", "", "Move to another client (ID or name)")
	eventsEditCmd.Flags().String("date", "", "Move to another date (YYYY-MM-DD)")
}
