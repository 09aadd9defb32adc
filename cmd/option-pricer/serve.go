package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/engine"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricing API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Server.Port = port
			}

			prov, err := data.FromConfig(cfg.Market)
			if err != nil {
				return err
			}
			eng := engine.NewEngine(engine.Config{Rate: cfg.Pricing.Rate}, prov)

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           server.NewRouter(server.NewHandler(eng)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.Infof("HTTP server starting on %s (market data: %s)", srv.Addr, prov.Name())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				logger.Infof("shutting down HTTP server...")

				timeout := time.Duration(cfg.Server.ShutdownTimeoutSec) * time.Second
				shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().Int("port", 0, "listen port override (default server.port)")
	return cmd
}
