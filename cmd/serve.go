package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"paisometer/internal/alerts"
	"paisometer/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		// Alerts are already logged by the monitor; nothing else to notify.
		a, err := newApp(ctx, cmd.OutOrStdout(), alerts.NotifierFunc(func(context.Context, alerts.Alert) {}))
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.Deps{
			Ingestor: a.ingestor,
			Syncer:   a.syncer,
			Pending:  a.queue,
			Ledger:   a.repo,
			Budget:   a.monitor,
		}, a.log)
		return srv.Listen(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config, :8080)")
	RootCmd.AddCommand(serveCmd)
}
