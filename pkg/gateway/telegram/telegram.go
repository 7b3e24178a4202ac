package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/config"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

const voiceFilename = "honk.ogg"

// Gateway implements gateway.Messenger on top of the Telegram Bot API.
type Gateway struct {
	bot *telego.Bot
	log *slog.Logger
}

// New validates the bot credential and constructs a fresh gateway bound to it.
func New(cfg config.TelegramConfig, log *slog.Logger) (*Gateway, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram.token is required")
	}

	if log == nil {
		log = slog.Default()
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return &Gateway{
		bot: bot,
		log: log.With("component", "gateway.telegram"),
	}, nil
}

func (g *Gateway) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := g.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func (g *Gateway) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	_, err := g.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeMarkdown))
	if err != nil {
		return fmt.Errorf("send markdown message: %w", err)
	}

	return nil
}

func (g *Gateway) SendVoice(ctx context.Context, chatID int64, voice []byte, durationHint int) error {
	params := tu.Voice(tu.ID(chatID), tu.File(tu.NameReader(bytes.NewReader(voice), voiceFilename)))
	if durationHint > 0 {
		params = params.WithDuration(durationHint)
	}

	if _, err := g.bot.SendVoice(ctx, params); err != nil {
		return fmt.Errorf("send voice: %w", err)
	}

	return nil
}

func (g *Gateway) SendDocument(ctx context.Context, chatID int64, document []byte, filename string) error {
	params := tu.Document(tu.ID(chatID), tu.File(tu.NameReader(bytes.NewReader(document), filename)))
	if _, err := g.bot.SendDocument(ctx, params); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}

func (g *Gateway) SendPresence(ctx context.Context, chatID int64, presence gateway.Presence) error {
	if err := g.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(chatID), chatAction(presence))); err != nil {
		return fmt.Errorf("send chat action: %w", err)
	}

	return nil
}

func (g *Gateway) RegisterWebhook(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("webhook url is required")
	}

	if err := g.bot.SetWebhook(ctx, &telego.SetWebhookParams{URL: url}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	return nil
}

// DecodeUpdate normalizes one raw Telegram update payload into an Event.
//
// Updates without a message, and messages with no text, voice, photo, or
// video content, decode to a nil event: the caller drops them silently.
func (g *Gateway) DecodeUpdate(payload []byte) (*gateway.Event, error) {
	var update telego.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}

	message := update.Message
	if message == nil {
		return nil, nil
	}

	event := &gateway.Event{
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	switch {
	case message.Voice != nil:
		event.Kind = gateway.KindVoice
	case len(message.Photo) > 0 || message.Video != nil:
		event.Kind = gateway.KindMedia
	case strings.HasPrefix(message.Text, "/"):
		event.Kind = gateway.KindCommand
		event.Command = commandName(message.Text)
	case strings.TrimSpace(message.Text) != "":
		event.Kind = gateway.KindText
	default:
		return nil, nil
	}

	return event, nil
}

// commandName extracts the bare command from "/name@bot args" text.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	return strings.ToLower(name)
}

func chatAction(presence gateway.Presence) string {
	switch presence {
	case gateway.PresenceRecordVoice:
		return telego.ChatActionRecordVoice
	case gateway.PresenceUploadPhoto:
		return telego.ChatActionUploadPhoto
	default:
		return telego.ChatActionTyping
	}
}
