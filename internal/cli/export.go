package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data to other formats",
}

var exportICSCmd = &cobra.Command{
	Use:   "ics",
	Short: "Export a month as an iCalendar file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ym, err := monthFlag(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = filepath.Join(appInstance.Config.Export.OutputDir, appInstance.ExportService.Filename(ym))
		}

		f, err := createOutput(path)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := appInstance.ExportService.Export(context.Background(), ym, f)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", n, path)
		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportICSCmd)

	exportICSCmd.Flags().String("month", "", "Month (YYYY-MM, default current)")
	exportICSCmd.Flags().String("out", "", "Output file (default <export dir>/calendar_<Month>_<Year>.ics)")
}
