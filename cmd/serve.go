package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/server"
	"github.com/ledgerline/soi-cli/internal/store"
)

var (
	servePort    int
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := initEngine()
		if err != nil {
			return err
		}

		var st store.Store
		if !serveNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return eris.Wrap(err, "serve: init store")
			}
			defer st.Close() //nolint:errcheck
		}

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		zap.L().Info("starting server", zap.Int("port", serverCfg.Port))
		return server.New(engine, st, serverCfg).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "serve without run persistence")
	rootCmd.AddCommand(serveCmd)
}
