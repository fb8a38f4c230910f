package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/andy/workcal/internal/httpapi"
	applog "github.com/andy/workcal/internal/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = appInstance.Config.Server.Listen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(httpapi.Services{
			Clients:  appInstance.ClientService,
			Events:   appInstance.EventService,
			Reports:  appInstance.ReportService,
			Backup:   appInstance.BackupService,
			Calendar: appInstance.ExportService,
			Chat:     appInstance.Chat,
		}, appInstance.Logger.WithComponent(applog.ComponentHTTP))

		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (default from config)")
}
