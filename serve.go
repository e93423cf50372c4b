package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/server"
	"github.com/metcalfc/trustfall/internal/telemetry"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the subscription API and story assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			log, cleanup, err := ctx.logger(true)
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			otelCfg, err := telemetry.ConfigFromEnv()
			if err != nil {
				return err
			}
			shutdown, err := telemetry.Setup(runCtx, "trustfall", otelCfg)
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(flushCtx); err != nil {
					log.Warn("telemetry shutdown failed", zap.Error(err))
				}
			}()

			client := &http.Client{
				Timeout:   30 * time.Second,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}
			srv := server.New(cfg, client, log)
			if err := srv.CheckAssets(); err != nil {
				log.Warn("asset directory incomplete", zap.Error(err))
			}
			if ctx.path != "" {
				log.Debug("configuration", zap.String("path", ctx.path))
			}
			return srv.Run(runCtx)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
