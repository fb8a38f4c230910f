package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore all clients and sessions",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = filepath.Join(appInstance.Config.Export.OutputDir, appInstance.BackupService.Filename(now()))
		}

		f, err := createOutput(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := appInstance.BackupService.Export(context.Background(), f); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace all data with a JSON backup",
	Long: `Replace all clients and sessions with the contents of a backup file.
The file must contain both "clients" and "events"; otherwise nothing changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will replace ALL clients and sessions. Continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open backup: %w", err)
		}
		defer f.Close()

		backup, err := appInstance.BackupService.Import(context.Background(), f)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d clients and %d events\n", len(backup.Clients), len(backup.Events))
		return nil
	},
}

// createOutput creates path and its parent directories
func createOutput(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)

	backupExportCmd.Flags().String("out", "", "Output file (default <export dir>/backup_YYYYMMDD.json)")
	backupImportCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
