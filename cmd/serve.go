package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/server"
	"github.com/ChaXxl/LysToolBox/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API over the workbooks and the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The archive is optional here; the workbook routes work without it.
		var st store.Store
		if cfg.Store.DatabaseURL != "" {
			s, err := initStore(ctx)
			if err != nil {
				zap.L().Warn("store unavailable, /api/store routes disabled", zap.Error(err))
			} else {
				defer s.Close()
				if err := s.Migrate(ctx); err != nil {
					return err
				}
				st = s
			}
		}

		srv := server.New(server.Options{
			Port:       cfg.Server.Port,
			DatasetDir: cfg.Dataset.Dir,
			Store:      st,
		})
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
