package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"hashlookup/internal/analyzer"
	"hashlookup/internal/analyzer/metrics"
	"hashlookup/internal/platform/config"
	"hashlookup/internal/platform/httpserver"
	"hashlookup/internal/platform/logger"
	"hashlookup/internal/timeline"
	httptransport "hashlookup/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer over HTTP (trigger endpoint, health, metrics)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load(viper.GetViper())
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.TimelinePath == "" {
			return fmt.Errorf("a timeline is required; pass --timeline or set HASHR_TIMELINE")
		}
		log := logger.New()

		store, err := timeline.OpenSQLite(cfg.TimelinePath)
		if err != nil {
			return err
		}
		defer store.Close()

		a, err := analyzer.New(hashrConfig(cfg), store, log, metrics.New(),
			cfg.QueryBatchSize, cfg.AddSourceAttribute)
		if err != nil {
			return err
		}

		handler := httptransport.NewHandler(a, log)
		srv := httpserver.New(cfg.HTTPAddr, httptransport.NewRouter(handler))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Printf("serving hashlookup on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}
