package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"milelog/internal/engine"
	"milelog/internal/logging"
	"milelog/internal/preflight"
	"milelog/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(bind) != "" {
				cfg.API.Bind = strings.TrimSpace(bind)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				for _, r := range failed {
					logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
						logging.String("check", r.Name),
						logging.String("detail", r.Detail))
				}
				return fmt.Errorf("preflight failed: %s", failed[0].Detail)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withEngine(cmd, func(_ context.Context, eng *engine.Engine) error {
				srv := server.New(cfg, eng, logger)
				if err := srv.Start(signalCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", srv.Addr())
				<-signalCtx.Done()
				srv.Stop()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides api.bind)")
	return cmd
}
