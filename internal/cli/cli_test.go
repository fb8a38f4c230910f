package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/config"
)

func setupApp(t *testing.T) *app.App {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")

	cfg := config.DefaultConfig()
	cfg.Export.OutputDir = t.TempDir()

	a, err := app.NewEphemeral(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	SetApp(a)
	now = func() time.Time { return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })
	return a
}

// run executes the root command with fresh flag values
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := Execute(args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestClientsCommands(t *testing.T) {
	a := setupApp(t)

	out := mustRun(t, "clients", "add", "Rossi", "--rate", "300", "--type", "piva", "--vat", "IT123", "--days", "10")
	if !strings.Contains(out, "Created client 'Rossi'") {
		t.Fatalf("unexpected output %q", out)
	}

	out = mustRun(t, "clients", "list")
	if !strings.Contains(out, "Demo Client") || !strings.Contains(out, "Rossi") || !strings.Contains(out, "SoleProprietor") {
		t.Fatalf("unexpected list:\n%s", out)
	}

	mustRun(t, "clients", "edit", "rossi", "--rate", "320")
	c, err := a.ClientService.Find(context.Background(), "Rossi")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if c.DailyRate != 320 || c.VATNumber != "IT123" || c.TotalDaysContracted != 10 {
		t.Fatalf("edit should only change the rate, got %+v", c)
	}

	if _, err := run(t, "clients", "add", "Bad", "--rate", "0"); err == nil {
		t.Fatalf("expected error for zero rate")
	}
	if _, err := run(t, "clients", "add", "Bad", "--rate", "nan"); err == nil {
		t.Fatalf("expected error for NaN rate")
	}
	if _, err := run(t, "clients", "add", "Bad", "--rate", "300", "--days", "inf"); err == nil {
		t.Fatalf("expected error for infinite contract")
	}

	mustRun(t, "clients", "delete", "Rossi")
	if len(a.ClientService.List(context.Background())) != 1 {
		t.Fatalf("expected one client left")
	}
}

func TestEventsCommands(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	mustRun(t, "events", "add", "Demo Client", "2024-03-05")
	mustRun(t, "events", "add", "1", "2024-03-06", "--hours", "4", "--mode", "remote", "--notes", "review")

	events := a.EventService.List(ctx)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Hours != 8 || !events[0].IsFullDay {
		t.Fatalf("expected full day default, got %+v", events[0])
	}

	out := mustRun(t, "events", "list")
	if !strings.Contains(out, "Total: 2 events, 12h (1.5 days)") {
		t.Fatalf("unexpected list:\n%s", out)
	}

	out = mustRun(t, "events", "list", "--date", "2024-03-06")
	if !strings.Contains(out, "review") || !strings.Contains(out, "Remote") {
		t.Fatalf("unexpected day list:\n%s", out)
	}

	mustRun(t, "events", "edit", events[1].ID, "--hours", "6")
	updated, _ := a.EventService.Get(ctx, events[1].ID)
	if updated.Hours != 6 || updated.Notes != "review" || updated.Date != "2024-03-06" {
		t.Fatalf("edit should only change hours, got %+v", updated)
	}

	if _, err := run(t, "events", "add", "nobody", "2024-03-07"); err == nil {
		t.Fatalf("expected error for unknown client")
	}
	if _, err := run(t, "events", "list", "--date", "07/03/2024"); err == nil {
		t.Fatalf("expected error for bad date")
	}
	if _, err := run(t, "events", "add", "1", "2024-03-07", "--hours", "inf"); err == nil {
		t.Fatalf("expected error for infinite hours")
	}
	if got := len(a.EventService.List(ctx)); got != 2 {
		t.Fatalf("rejected sessions must not be stored, got %d events", got)
	}

	mustRun(t, "events", "delete", events[0].ID)
	if len(a.EventService.List(ctx)) != 1 {
		t.Fatalf("expected one event left")
	}
}

func TestStatsAndStatement(t *testing.T) {
	setupApp(t)
	mustRun(t, "events", "add", "1", "2024-03-05", "--hours", "16")
	mustRun(t, "events", "add", "1", "2024-04-01")

	out := mustRun(t, "stats", "--month", "2024-03")
	if !strings.Contains(out, "Total revenue: € 700.00") {
		t.Fatalf("unexpected stats:\n%s", out)
	}

	out = mustRun(t, "statement", "Demo Client", "--month", "2024-03")
	if !strings.Contains(out, "Subtotal:  € 700.00") || strings.Contains(out, "2024-04-01") {
		t.Fatalf("unexpected statement:\n%s", out)
	}

	out = mustRun(t, "calendar")
	if !strings.Contains(out, "March 2024") || !strings.Contains(out, " 5 16h") {
		t.Fatalf("unexpected calendar:\n%s", out)
	}
}

func TestBackupAndReset(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()
	mustRun(t, "events", "add", "1", "2024-03-05")

	mustRun(t, "backup", "export")
	path := filepath.Join(a.Config.Export.OutputDir, "backup_20240320.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}

	mustRun(t, "reset", "events", "--yes")
	if len(a.EventService.List(ctx)) != 0 || len(a.ClientService.List(ctx)) != 1 {
		t.Fatalf("reset events should keep clients")
	}
	mustRun(t, "reset", "all", "-y")
	if len(a.ClientService.List(ctx)) != 0 {
		t.Fatalf("reset all should remove clients")
	}

	out := mustRun(t, "backup", "import", path, "--yes")
	if !strings.Contains(out, "Imported 1 clients and 1 events") {
		t.Fatalf("unexpected import output %q", out)
	}
}

func TestExportICS(t *testing.T) {
	a := setupApp(t)
	mustRun(t, "events", "add", "1", "2024-03-05", "--notes", "kickoff")

	out := mustRun(t, "export", "ics")
	path := filepath.Join(a.Config.Export.OutputDir, "calendar_March_2024.ics")
	if !strings.Contains(out, "Exported 1 events") {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN:VCALENDAR") {
		t.Fatalf("expected a calendar, got:\n%s", data)
	}

	mustRun(t, "clients", "add", "Rossi", "--rate", "300")
	out = mustRun(t, "events", "import", "Rossi", path)
	if !strings.Contains(out, "Imported 0 events, skipped 1") {
		t.Fatalf("expected the logged session to be skipped, got %q", out)
	}

	ctx := context.Background()
	existing := a.EventService.List(ctx)
	mustRun(t, "events", "delete", existing[0].ID)
	out = mustRun(t, "events", "import", "Rossi", path)
	if !strings.Contains(out, "Imported 1 events, skipped 0") {
		t.Fatalf("unexpected output %q", out)
	}
	rossi, _ := a.ClientService.Find(ctx, "Rossi")
	imported := a.EventService.List(ctx)
	if len(imported) != 1 || imported[0].ClientID != rossi.ID || imported[0].Notes != "kickoff" {
		t.Fatalf("unexpected imported events %+v", imported)
	}

	if _, err := run(t, "events", "import", "Rossi", filepath.Join(t.TempDir(), "missing.ics")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAsk(t *testing.T) {
	setupApp(t)
	out := mustRun(t, "ask", "give", "me", "some", "advice")
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected a reply")
	}
}
