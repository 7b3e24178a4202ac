package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const previewLimit = 240

// Logging records an attempt before each step invocation and a success or
// failure record after it, tagged with the step name.
//
// Records carry a phase attribute (attempt, success, failure) so callers can
// count them. Failures are re-returned untouched; logging never masks the
// underlying step error.
func Logging(log *slog.Logger) Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(step Step) Step {
		name := step.Name
		next := step.Run
		step.Run = func(ctx context.Context, input any) (any, error) {
			log.Debug("Step attempt", "phase", "attempt", "step", name)

			output, err := next(ctx, input)
			if err != nil {
				log.Error("Step failed", "phase", "failure", "step", name, "input", preview(input), "error", err)
				return nil, err
			}

			log.Debug("Step succeeded", "phase", "success", "step", name, "input", preview(input), "result", preview(output))
			return output, nil
		}

		return step
	}
}

// Abort translates any step failure into a DispatchError naming the step.
//
// Failures that are already translated pass through unchanged, so nested
// pipelines keep the innermost failing step's name.
func Abort() Middleware {
	return func(step Step) Step {
		name := step.Name
		next := step.Run
		step.Run = func(ctx context.Context, input any) (any, error) {
			output, err := next(ctx, input)
			if err != nil {
				var translated *DispatchError
				if errors.As(err, &translated) {
					return nil, err
				}

				return nil, &DispatchError{Step: name, Cause: err}
			}

			return output, nil
		}

		return step
	}
}

// preview returns a bounded log-safe rendering of a step argument or result.
func preview(value any) string {
	if raw, ok := value.([]byte); ok {
		return fmt.Sprintf("%d bytes", len(raw))
	}

	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if len(text) <= previewLimit {
		return text
	}

	return text[:previewLimit] + "..."
}
