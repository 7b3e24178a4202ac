/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/blob"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/bot"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/config"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway/console"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/logger"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/ui/chat"

	"github.com/spf13/cobra"
)

const localChatID = 1

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the goose locally",
	Long:  "Starts an interactive terminal chat against an in-memory goose, no Telegram credential or bucket required.",
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

		messenger := console.New()
		goose := bot.New(messenger, pondStore(), appLogger)
		router := goose.Router()

		reply := func(ctx context.Context, input string) ([]string, error) {
			router.Dispatch(ctx, localEvent(input))
			return messenger.Drain(), nil
		}

		if err := chat.Run(cmd.Context(), reply); err != nil {
			fmt.Printf("chat failed: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// localEvent maps raw terminal input onto the same event shapes the webhook
// path produces, so the local goose exercises the real route table.
func localEvent(input string) gateway.Event {
	event := gateway.Event{ChatID: localChatID, Text: input}

	switch {
	case strings.HasPrefix(input, "/"):
		event.Kind = gateway.KindCommand
		event.Command = strings.ToLower(strings.TrimPrefix(strings.Fields(input)[0], "/"))
	case strings.EqualFold(strings.TrimSpace(input), "voice"):
		event.Kind = gateway.KindVoice
	case strings.EqualFold(strings.TrimSpace(input), "photo"):
		event.Kind = gateway.KindMedia
	default:
		event.Kind = gateway.KindText
	}

	return event
}

// pondStore seeds the in-memory store with stand-in assets so /honk and
// /start have something to pick.
func pondStore() *blob.MemStore {
	return blob.NewMemStore(map[string][]byte{
		"audio/":               {},
		"audio/honk1.ogg":      []byte("local honk one"),
		"audio/honk2.ogg":      []byte("local honk two"),
		"media/hello/":         {},
		"media/hello/wave.gif": []byte("local hello gif"),
	})
}
