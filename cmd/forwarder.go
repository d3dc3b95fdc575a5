package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loopper-ai/ticket-ingest/internal/application"
	"github.com/loopper-ai/ticket-ingest/internal/config"
)

var forwarderCmd = &cobra.Command{
	Use:   "forwarder",
	Short: "Drain the queue and forward batches to the app server",
	RunE:  runForwarder,
}

func runForwarder(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	app, err := application.NewForwarder(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}
