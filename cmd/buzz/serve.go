package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	buzz "github.com/Xevion/go-buzz"
	"github.com/Xevion/go-buzz/internal/server"
	"github.com/Xevion/go-buzz/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the buzz daemon",
	Long:  "Run the clock, the alert scheduler and the HTTP API with the browser UI.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	seeds := make([]types.TimeString, 0, len(cfg.SeedTimes))
	for _, s := range cfg.SeedTimes {
		seeds = append(seeds, types.TimeString(s))
	}

	app, err := buzz.NewApp(types.NewAppRequest{
		DataDir:       cfg.DataDir,
		StoreBackend:  cfg.StoreBackend,
		SQLitePath:    cfg.SQLitePath,
		PlayerCommand: cfg.PlayerCommand,
		Volume:        &cfg.Volume,
		TickInterval:  cfg.TickInterval,
		SeedTimes:     seeds,
		Latitude:      cfg.Latitude,
		Longitude:     cfg.Longitude,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Shutdown cleanup failed", "error", err)
		}
	}()

	srv := server.New(app, server.Options{
		MaxUploadBytes: cfg.MaxUploadSizeBytes(),
		Logger:         logger.With("component", "http"),
		IsBadRequest:   buzz.IsInvalidInput,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Start(ctx)
	}()

	err = srv.ListenAndServe(ctx, cfg.HTTPAddr)
	stop()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("Buzz stopped")
	return nil
}
