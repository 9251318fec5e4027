package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundcu/benefit-engine/internal/api"
	"github.com/soundcu/benefit-engine/internal/metrics"
	"github.com/soundcu/benefit-engine/internal/sweep"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API with the periodic alert sweep",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	collector := metrics.NewCollector()
	eng.WithMetrics(collector)

	sweeper := sweep.NewService(eng, viper.GetString("alerts.sweep_schedule"))
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	server := api.NewServer(eng, collector)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(viper.GetString("server.addr"))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
