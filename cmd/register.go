/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/config"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway/telegram"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/logger"

	"github.com/spf13/cobra"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the webhook endpoint with Telegram",
	Long:  "One-shot registration of the configured public endpoint as the bot's webhook, without starting the server.",
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
		log := slog.Default().With("component", "cmd.register")

		if cfg.Webhook.Endpoint == "" {
			log.Error("webhook.endpoint is required")
			return
		}

		messenger, err := telegram.New(cfg.Telegram, appLogger)
		if err != nil {
			log.Error("Failed to configure telegram gateway", "error", err)
			return
		}

		if err := messenger.RegisterWebhook(context.Background(), cfg.Webhook.Endpoint); err != nil {
			log.Error("Webhook registration failed", "error", err, "endpoint", cfg.Webhook.Endpoint)
			return
		}

		log.Info("Set webhook", "endpoint", cfg.Webhook.Endpoint)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
