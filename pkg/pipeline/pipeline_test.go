package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler {
	return h
}

func (h *recordingHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *recordingHandler) phases() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var phases []string
	for _, record := range h.records {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "phase" {
				phases = append(phases, attr.Value.String())
			}
			return true
		})
	}

	return phases
}

func addStep(n int) Step {
	return NewStep("add_"+strconv.Itoa(n), func(_ context.Context, input int) (int, error) {
		return input + n, nil
	})
}

func failingStep(name string, cause error) Step {
	return NewStep(name, func(_ context.Context, _ int) (int, error) {
		return 0, cause
	})
}

func TestRunMatchesDirectComposition(t *testing.T) {
	steps := []Step{
		addStep(1),
		NewStep("double", func(_ context.Context, input int) (int, error) {
			return input * 2, nil
		}),
		addStep(3),
	}

	result, err := Run(context.Background(), 5, steps)
	require.NoError(t, err)
	require.Equal(t, (5+1)*2+3, result)
}

func TestRunEmptyStepsReturnsInitial(t *testing.T) {
	result, err := Run(context.Background(), "unchanged", nil)
	require.NoError(t, err)
	require.Equal(t, "unchanged", result)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	invoked := false
	steps := []Step{
		addStep(1),
		failingStep("explode", errors.New("boom")),
		NewStep("never", func(_ context.Context, input int) (int, error) {
			invoked = true
			return input, nil
		}),
	}

	_, err := Run(context.Background(), 0, steps, Abort(), Logging(slog.New(&recordingHandler{})))
	require.Error(t, err)
	require.False(t, invoked, "steps after the failure must not run")

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	require.Equal(t, "explode", dispatchErr.Step)
	require.Equal(t, "error in explode: boom", err.Error())
}

func TestRunWithoutAbortReturnsRawError(t *testing.T) {
	cause := errors.New("boom")
	_, err := Run(context.Background(), 0, []Step{failingStep("explode", cause)})
	require.ErrorIs(t, err, cause)

	var dispatchErr *DispatchError
	require.False(t, errors.As(err, &dispatchErr))
}

func TestNewStepRejectsUnexpectedInputType(t *testing.T) {
	step := NewStep("typed", func(_ context.Context, input int) (int, error) {
		return input, nil
	})

	_, err := step.Run(context.Background(), "not an int")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected input type")
}

func TestLoggingEmitsOneAttemptSuccessPairPerStep(t *testing.T) {
	handler := &recordingHandler{}
	steps := []Step{addStep(1), addStep(2), addStep(3)}

	result, err := Run(context.Background(), 0, steps, Abort(), Logging(slog.New(handler)))
	require.NoError(t, err)
	require.Equal(t, 6, result)
	require.Equal(t, []string{"attempt", "success", "attempt", "success", "attempt", "success"}, handler.phases())
}

func TestLoggingEmitsFailurePhaseOnError(t *testing.T) {
	handler := &recordingHandler{}
	steps := []Step{failingStep("explode", errors.New("boom"))}

	_, err := Run(context.Background(), 0, steps, Abort(), Logging(slog.New(handler)))
	require.Error(t, err)
	require.Equal(t, []string{"attempt", "failure"}, handler.phases())
}

func TestAbortKeepsInnermostStepName(t *testing.T) {
	inner := []Step{failingStep("inner", errors.New("boom"))}
	outer := []Step{
		NewStep("outer", func(ctx context.Context, input int) (int, error) {
			_, err := Run(ctx, input, inner, Abort())
			return 0, err
		}),
	}

	_, err := Run(context.Background(), 0, outer, Abort())
	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	require.Equal(t, "inner", dispatchErr.Step)
}

func TestPreviewBoundsLongValues(t *testing.T) {
	long := ""
	for len(long) <= previewLimit {
		long += "honk "
	}

	got := preview(long)
	if len(got) != previewLimit+3 {
		t.Fatalf("preview len = %d, want %d", len(got), previewLimit+3)
	}
}

func TestPreviewSummarizesBytes(t *testing.T) {
	if got := preview(make([]byte, 1024)); got != fmt.Sprintf("%d bytes", 1024) {
		t.Fatalf("preview bytes = %q", got)
	}
}
