package router

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
)

// Handler processes one matched inbound event.
type Handler func(ctx context.Context, event gateway.Event) error

// ErrorHandler recovers a failed handler invocation, typically by sending a
// fixed apology to the originating chat. It must be best effort: it has no
// error to return and nothing it does may abort the request.
type ErrorHandler func(ctx context.Context, event gateway.Event, cause error)

type matcherKind int

const (
	matchCommand matcherKind = iota
	matchMedia
	matchText
)

// Matcher decides whether a route applies to an inbound event. It is a
// tagged variant: exact command name, media kind, or text pattern.
type Matcher struct {
	kind    matcherKind
	command string
	media   map[gateway.Kind]struct{}
	pattern *regexp.Regexp
}

// Command matches an explicit named command such as "start".
func Command(name string) Matcher {
	return Matcher{kind: matchCommand, command: name}
}

// Media matches events of any of the given media kinds.
func Media(kinds ...gateway.Kind) Matcher {
	set := make(map[gateway.Kind]struct{}, len(kinds))
	for _, kind := range kinds {
		set[kind] = struct{}{}
	}

	return Matcher{kind: matchMedia, media: set}
}

// Text matches free text that is not itself a command. A nil pattern
// matches any text event.
func Text(pattern *regexp.Regexp) Matcher {
	return Matcher{kind: matchText, pattern: pattern}
}

func (m Matcher) matches(event gateway.Event) bool {
	switch m.kind {
	case matchCommand:
		return event.Kind == gateway.KindCommand && event.Command == m.command
	case matchMedia:
		_, ok := m.media[event.Kind]
		return ok
	case matchText:
		if event.Kind != gateway.KindText {
			return false
		}
		return m.pattern == nil || m.pattern.MatchString(event.Text)
	default:
		return false
	}
}

type route struct {
	matcher Matcher
	handler Handler
}

// Router maps inbound events to handlers by first-match over an ordered
// route table. The table is built once and immutable during dispatch.
type Router struct {
	routes  []route
	onError ErrorHandler
	log     *slog.Logger
}

// New constructs an empty router.
func New(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{log: log.With("component", "router")}
}

// Handle appends a route. Registration order is first-match priority.
func (r *Router) Handle(matcher Matcher, handler Handler) {
	r.routes = append(r.routes, route{matcher: matcher, handler: handler})
}

// OnError installs the fallback invoked when a matched handler fails.
func (r *Router) OnError(handler ErrorHandler) {
	r.onError = handler
}

// Dispatch selects at most one handler by first-match and invokes it.
//
// It reports whether any route matched; an unmatched event is dropped
// silently. A handler failure is funneled to the fallback error handler and
// never propagates, so the webhook still acknowledges the update.
func (r *Router) Dispatch(ctx context.Context, event gateway.Event) bool {
	for _, route := range r.routes {
		if !route.matcher.matches(event) {
			continue
		}

		if err := route.handler(ctx, event); err != nil {
			r.log.Error("Handler failed", "kind", event.Kind, "command", event.Command, "error", err)
			if r.onError != nil {
				r.onError(ctx, event, err)
			}
		}

		return true
	}

	r.log.Debug("No route matched, dropping event", "kind", event.Kind, "command", event.Command)
	return false
}
