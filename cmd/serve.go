/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/blob"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/bot"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/config"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway/telegram"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/logger"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/server"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/webhook"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Long:  "Serves the goose over HTTP: GET registers the webhook with Telegram, POST processes one update.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.serve")

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The storage client is the only piece built once at cold start.
		// Everything touching the bot credential is rebuilt per invocation.
		store, err := blob.NewGCSStore(runCtx, cfg.Storage.Bucket)
		if err != nil {
			log.Error("Failed to open asset bucket", "error", err, "bucket", cfg.Storage.Bucket)
			return
		}

		dispatcher, err := webhook.NewDispatcher(cfg.Webhook.Endpoint, bindings(cfg, store, appLogger), appLogger)
		if err != nil {
			log.Error("Webhook configuration invalid", "error", err)
			return
		}

		srv, err := server.New(cfg.Server, dispatcher, appLogger)
		if err != nil {
			log.Error("Failed to initialize server", "error", err)
			return
		}

		log.Info("Goose started", "endpoint", cfg.Webhook.Endpoint, "bucket", cfg.Storage.Bucket, "region", cfg.Storage.Region)
		if err := srv.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Server runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// bindings builds the per-invocation wiring: a fresh Telegram gateway and a
// fresh route table, sharing only the cold-start storage client.
func bindings(cfg *config.Config, store blob.Store, log *slog.Logger) webhook.BindingFactory {
	return func(context.Context) (*webhook.Binding, error) {
		messenger, err := telegram.New(cfg.Telegram, log)
		if err != nil {
			return nil, fmt.Errorf("configure telegram gateway: %w", err)
		}

		return &webhook.Binding{
			Messenger: messenger,
			Router:    bot.New(messenger, store, log).Router(),
		}, nil
	}
}
