package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pressxtohonk/pressxtohonk-bot/pkg/gateway"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/pipeline"
	"github.com/pressxtohonk/pressxtohonk-bot/pkg/router"
)

// MethodError reports an HTTP verb the dispatcher does not implement.
type MethodError struct {
	Method string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s not supported", e.Method)
}

// Binding is the per-invocation wiring: a fresh Messenger bound to the bot
// credential and a fresh route table. Nothing in a Binding outlives one
// request, so concurrent invocations share no gateway state.
type Binding struct {
	Messenger gateway.Messenger
	Router    *router.Router
}

// BindingFactory builds fresh bindings for one invocation.
type BindingFactory func(ctx context.Context) (*Binding, error)

// Dispatcher is the webhook entry point. GET registers the public endpoint
// as the platform's webhook; POST processes one update payload; anything
// else is unimplemented. Each accepted request runs through the pipeline
// engine with abort-translation and logging applied to every step.
type Dispatcher struct {
	endpoint string
	bind     BindingFactory
	log      *slog.Logger
}

// NewDispatcher constructs the dispatcher around the public endpoint URL
// read once at cold start.
func NewDispatcher(endpoint string, bind BindingFactory, log *slog.Logger) (*Dispatcher, error) {
	if endpoint == "" {
		return nil, errors.New("webhook.endpoint is required")
	}
	if bind == nil {
		return nil, errors.New("binding factory is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		endpoint: endpoint,
		bind:     bind,
		log:      log.With("component", "webhook.dispatcher"),
	}, nil
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	middleware := []pipeline.Middleware{pipeline.Abort(), pipeline.Logging(d.log)}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		d.respondError(w, &MethodError{Method: r.Method})
		return
	}

	binding, err := d.buildBindings(ctx, middleware)
	if err != nil {
		d.respondError(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		d.handleRegister(ctx, w, binding, middleware)
	case http.MethodPost:
		d.handleUpdate(ctx, w, r, binding, middleware)
	}
}

// buildBindings constructs the per-invocation wiring as a pipeline step so
// construction failures surface with the same translated error shape as any
// other step.
func (d *Dispatcher) buildBindings(ctx context.Context, middleware []pipeline.Middleware) (*Binding, error) {
	steps := []pipeline.Step{
		pipeline.NewStep("build_bindings", func(ctx context.Context, _ string) (*Binding, error) {
			return d.bind(ctx)
		}),
	}

	result, err := pipeline.Run(ctx, d.endpoint, steps, middleware...)
	if err != nil {
		return nil, err
	}

	return result.(*Binding), nil
}

func (d *Dispatcher) handleRegister(ctx context.Context, w http.ResponseWriter, binding *Binding, middleware []pipeline.Middleware) {
	steps := []pipeline.Step{
		pipeline.NewStep("register_webhook", func(ctx context.Context, url string) (string, error) {
			if err := binding.Messenger.RegisterWebhook(ctx, url); err != nil {
				return "", err
			}
			return "Set webhook", nil
		}),
	}

	result, err := pipeline.Run(ctx, d.endpoint, steps, middleware...)
	if err != nil {
		d.respondError(w, err)
		return
	}

	d.respondText(w, http.StatusOK, result.(string))
}

func (d *Dispatcher) handleUpdate(ctx context.Context, w http.ResponseWriter, r *http.Request, binding *Binding, middleware []pipeline.Middleware) {
	steps := []pipeline.Step{
		pipeline.NewStep("extract_json", func(_ context.Context, request *http.Request) ([]byte, error) {
			body, err := io.ReadAll(request.Body)
			if err != nil {
				return nil, fmt.Errorf("read request body: %w", err)
			}
			if !json.Valid(body) {
				return nil, errors.New("request body is not valid JSON")
			}
			return body, nil
		}),
		pipeline.NewStep("decode_update", func(_ context.Context, payload []byte) (*gateway.Event, error) {
			return binding.Messenger.DecodeUpdate(payload)
		}),
		pipeline.NewStep("handle_update", func(ctx context.Context, event *gateway.Event) (string, error) {
			// A nil event and an unmatched event both acknowledge with ok:
			// the platform should not retry updates this bot ignores.
			if event != nil {
				binding.Router.Dispatch(ctx, *event)
			}
			return "ok", nil
		}),
	}

	result, err := pipeline.Run(ctx, r, steps, middleware...)
	if err != nil {
		d.respondError(w, err)
		return
	}

	d.respondText(w, http.StatusOK, result.(string))
}

func (d *Dispatcher) respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		d.log.Error("Failed to write response", "error", err)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps the error taxonomy onto the HTTP surface: translated
// step failures become ABORTED, unsupported verbs become UNIMPLEMENTED.
func (d *Dispatcher) respondError(w http.ResponseWriter, err error) {
	code := "ABORTED"
	status := http.StatusConflict

	var methodErr *MethodError
	if errors.As(err, &methodErr) {
		code = "UNIMPLEMENTED"
		status = http.StatusNotImplemented
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(errorResponse{Code: code, Message: err.Error()}); encodeErr != nil {
		d.log.Error("Failed to write error response", "error", encodeErr)
	}
}
