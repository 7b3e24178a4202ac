package router

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"

	"github.com/stretchr/testify/require"
)

func commandEvent(name string) gateway.Event {
	return gateway.Event{Kind: gateway.KindCommand, Command: name, ChatID: 42}
}

func textEvent(text string) gateway.Event {
	return gateway.Event{Kind: gateway.KindText, Text: text, ChatID: 42}
}

func TestDispatchFirstMatchWins(t *testing.T) {
	r := New(slog.Default())

	var order []string
	r.Handle(Command("honk"), func(context.Context, gateway.Event) error {
		order = append(order, "first")
		return nil
	})
	r.Handle(Command("honk"), func(context.Context, gateway.Event) error {
		order = append(order, "second")
		return nil
	})

	matched := r.Dispatch(context.Background(), commandEvent("honk"))
	require.True(t, matched)
	require.Equal(t, []string{"first"}, order)
}

func TestDispatchPriorityOrder(t *testing.T) {
	r := New(slog.Default())

	var hits []string
	record := func(name string) Handler {
		return func(context.Context, gateway.Event) error {
			hits = append(hits, name)
			return nil
		}
	}

	r.Handle(Command("honk"), record("command"))
	r.Handle(Media(gateway.KindVoice), record("voice"))
	r.Handle(Media(gateway.KindMedia), record("media"))
	r.Handle(Text(nil), record("text"))

	r.Dispatch(context.Background(), commandEvent("honk"))
	r.Dispatch(context.Background(), gateway.Event{Kind: gateway.KindVoice, ChatID: 42})
	r.Dispatch(context.Background(), gateway.Event{Kind: gateway.KindMedia, ChatID: 42})
	r.Dispatch(context.Background(), textEvent("hello"))

	require.Equal(t, []string{"command", "voice", "media", "text"}, hits)
}

func TestDispatchUnmatchedEventDropsSilently(t *testing.T) {
	r := New(slog.Default())
	r.Handle(Command("start"), func(context.Context, gateway.Event) error {
		t.Fatal("handler must not run")
		return nil
	})

	matched := r.Dispatch(context.Background(), textEvent("no routes for text"))
	require.False(t, matched)
}

func TestDispatchTextMatcherIgnoresCommands(t *testing.T) {
	r := New(slog.Default())
	invoked := false
	r.Handle(Text(nil), func(context.Context, gateway.Event) error {
		invoked = true
		return nil
	})

	matched := r.Dispatch(context.Background(), commandEvent("start"))
	require.False(t, matched)
	require.False(t, invoked)
}

func TestDispatchTextPattern(t *testing.T) {
	r := New(slog.Default())
	invoked := false
	r.Handle(Text(regexp.MustCompile(`(?i)\bx+\b`)), func(context.Context, gateway.Event) error {
		invoked = true
		return nil
	})

	require.False(t, r.Dispatch(context.Background(), textEvent("hello world")))
	require.True(t, r.Dispatch(context.Background(), textEvent("press x to honk")))
	require.True(t, invoked)
}

func TestDispatchHandlerErrorInvokesFallback(t *testing.T) {
	r := New(slog.Default())
	cause := errors.New("send failed")
	r.Handle(Command("honk"), func(context.Context, gateway.Event) error {
		return cause
	})

	var recovered error
	var recoveredChat int64
	r.OnError(func(_ context.Context, event gateway.Event, err error) {
		recovered = err
		recoveredChat = event.ChatID
	})

	matched := r.Dispatch(context.Background(), commandEvent("honk"))
	require.True(t, matched, "a failed handler still counts as matched")
	require.ErrorIs(t, recovered, cause)
	require.Equal(t, int64(42), recoveredChat)
}

func TestDispatchHandlerErrorWithoutFallbackDoesNotPanic(t *testing.T) {
	r := New(slog.Default())
	r.Handle(Command("honk"), func(context.Context, gateway.Event) error {
		return errors.New("send failed")
	})

	require.NotPanics(t, func() {
		r.Dispatch(context.Background(), commandEvent("honk"))
	})
}
