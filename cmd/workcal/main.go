package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/andy/workcal/internal/app"
	"github.com/andy/workcal/internal/cli"
)

var (
	newApp   = app.New
	closeApp = (*app.App).Close
)

func main() {
	// Optional .env with GEMINI_API_KEY or WORKCAL_DB_KEY
	_ = godotenv.Load()

	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the command line and returns the exit code. The app is
// closed before run returns.
func run(ctx context.Context, args []string) int {
	if !helpOnly(args) {
		opts := app.Options{
			ConfigPath: os.Getenv("WORKCAL_CONFIG"),
			LogToFile:  len(args) == 0 || args[0] == "tui",
		}

		a, err := newApp(ctx, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize app: %v\n", err)
			return 1
		}
		defer func() {
			if err := closeApp(a); err != nil {
				fmt.Fprintf(os.Stderr, "failed to close app: %v\n", err)
			}
		}()
		cli.SetApp(a)
	}

	if err := cli.Execute(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// helpOnly reports whether args ask for help, which needs no app (and no
// password prompt)
func helpOnly(args []string) bool {
	for _, a := range args {
		if a == "-h" || a == "--help" || a == "help" || a == "completion" {
			return true
		}
	}
	return false
}
