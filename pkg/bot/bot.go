package bot

import (
	"context"
	"log/slog"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/blob"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/pipeline"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/router"
)

const (
	greetingText = "honk honk (/help to call for help ❤️ 🔪)"
	apologyText  = "Sad honks (something went wrong 💔🔪)"

	helpText = "It's a lovely morning in the village, and you are a horrible goose." +
		"\n" +
		"\n*Commands*" +
		"\n/start to say hello" +
		"\n/help shows this message" +
		"\n/honk to honk..?" +
		"\n" +
		"\n*Talk to a goose*" +
		"\n(In groups, only responds to replies to reduce spam)" +
		"\npress x to honk" +
		"\npress X to HONK"

	audioPrefix       = "audio/"
	helloPrefix       = "media/hello/"
	helloDelimiter    = "/"
	helloFilename     = "hello.gif"
	voiceDurationHint = 1
)

// Bot holds the goose's handlers: static replies plus media pulled from the
// blob store. One Bot is built per webhook invocation, bound to a fresh
// Messenger.
type Bot struct {
	messenger gateway.Messenger
	store     blob.Store
	assets    *blob.Selector
	log       *slog.Logger
}

// New constructs a bot over the given messenger and asset store.
func New(messenger gateway.Messenger, store blob.Store, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}

	return &Bot{
		messenger: messenger,
		store:     store,
		assets:    blob.NewSelector(store, log),
		log:       log.With("component", "bot"),
	}
}

// Router binds the goose's route table in priority order: named commands,
// then voice, then photo-or-video, then free text. Unmatched events drop
// silently; failed handlers degrade to the apology fallback.
func (b *Bot) Router() *router.Router {
	r := router.New(b.log)
	r.Handle(router.Command("start"), b.handleStart)
	r.Handle(router.Command("help"), b.handleHelp)
	r.Handle(router.Command("honk"), b.handleHonk)
	r.Handle(router.Media(gateway.KindVoice), b.handleHonk)
	r.Handle(router.Media(gateway.KindMedia), b.handleHello)
	r.Handle(router.Text(nil), b.handlePressXToHonk)
	r.OnError(b.apologize)
	return r
}

func (b *Bot) handleStart(ctx context.Context, event gateway.Event) error {
	if err := b.handleHello(ctx, event); err != nil {
		return err
	}

	return b.handleGreet(ctx, event)
}

func (b *Bot) handleGreet(ctx context.Context, event gateway.Event) error {
	b.sendPresence(ctx, event, gateway.PresenceTyping)
	return b.messenger.SendMarkdown(ctx, event.ChatID, greetingText)
}

func (b *Bot) handleHelp(ctx context.Context, event gateway.Event) error {
	b.sendPresence(ctx, event, gateway.PresenceTyping)
	return b.messenger.SendMarkdown(ctx, event.ChatID, helpText)
}

// handleHonk replies with a random voice clip from the audio namespace.
func (b *Bot) handleHonk(ctx context.Context, event gateway.Event) error {
	b.sendPresence(ctx, event, gateway.PresenceRecordVoice)

	steps := []pipeline.Step{
		pipeline.NewStep("pick_random_voice", func(ctx context.Context, query blob.Query) (string, error) {
			return b.assets.PickRandom(ctx, query)
		}),
		pipeline.NewStep("download_voice", func(ctx context.Context, name string) ([]byte, error) {
			return b.store.Download(ctx, name)
		}),
		pipeline.NewStep("send_voice", func(ctx context.Context, voice []byte) (any, error) {
			return nil, b.messenger.SendVoice(ctx, event.ChatID, voice, voiceDurationHint)
		}),
	}

	_, err := pipeline.Run(ctx, blob.Query{Prefix: audioPrefix}, steps, pipeline.Logging(b.log))
	return err
}

// handleHello replies with a random greeting gif from the hello namespace.
func (b *Bot) handleHello(ctx context.Context, event gateway.Event) error {
	b.sendPresence(ctx, event, gateway.PresenceUploadPhoto)

	steps := []pipeline.Step{
		pipeline.NewStep("pick_random_gif", func(ctx context.Context, query blob.Query) (string, error) {
			return b.assets.PickRandom(ctx, query)
		}),
		pipeline.NewStep("download_gif", func(ctx context.Context, name string) ([]byte, error) {
			return b.store.Download(ctx, name)
		}),
		pipeline.NewStep("send_gif", func(ctx context.Context, document []byte) (any, error) {
			return nil, b.messenger.SendDocument(ctx, event.ChatID, document, helloFilename)
		}),
	}

	_, err := pipeline.Run(ctx, blob.Query{Prefix: helloPrefix, Delimiter: helloDelimiter}, steps, pipeline.Logging(b.log))
	return err
}

// handlePressXToHonk translates all-x tokens into honks. An input with no
// qualifying tokens is a silent no-op, not an error.
func (b *Bot) handlePressXToHonk(ctx context.Context, event gateway.Event) error {
	b.sendPresence(ctx, event, gateway.PresenceTyping)

	reply := honks(event.Text)
	if reply == "" {
		return nil
	}

	return b.messenger.SendText(ctx, event.ChatID, reply)
}

// apologize is the fallback for failed handlers. It is fire and forget: a
// failed apology is logged and swallowed.
func (b *Bot) apologize(ctx context.Context, event gateway.Event, cause error) {
	b.sendPresence(ctx, event, gateway.PresenceTyping)

	if err := b.messenger.SendText(ctx, event.ChatID, apologyText); err != nil {
		b.log.Debug("Failed to send apology", "chat_id", event.ChatID, "cause", cause, "error", err)
	}
}

// sendPresence is a UX courtesy; its failure never aborts the handler.
func (b *Bot) sendPresence(ctx context.Context, event gateway.Event, presence gateway.Presence) {
	if err := b.messenger.SendPresence(ctx, event.ChatID, presence); err != nil {
		b.log.Debug("Failed to send presence", "chat_id", event.ChatID, "presence", presence, "error", err)
	}
}
