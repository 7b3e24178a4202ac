package pipeline

import (
	"context"
	"fmt"
)

// Step is one fallible transformation stage in a sequential processing chain.
//
// A step receives the previous step's output as its sole input and returns
// the value handed to the next step.
type Step struct {
	Name string
	Run  func(ctx context.Context, input any) (any, error)
}

// Middleware wraps a Step with cross-cutting behavior at composition time.
type Middleware func(Step) Step

// NewStep adapts a typed transformation into a Step.
//
// The adapter asserts the runtime input type so wiring mistakes surface as
// step failures instead of panics.
func NewStep[T any, U any](name string, fn func(ctx context.Context, input T) (U, error)) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context, input any) (any, error) {
			typed, ok := input.(T)
			if !ok {
				return nil, fmt.Errorf("unexpected input type %T", input)
			}

			output, err := fn(ctx, typed)
			if err != nil {
				return nil, err
			}

			return output, nil
		},
	}
}

// Run passes initial through steps strictly in order, wrapping every step
// with the given middleware before invoking it.
//
// Middleware is applied outer-to-inner in the order given: the first
// middleware observes the others. An empty step sequence returns initial
// unchanged. Execution stops at the first failing step; later steps are
// never invoked.
func Run(ctx context.Context, initial any, steps []Step, middleware ...Middleware) (any, error) {
	value := initial
	for _, step := range steps {
		output, err := compose(step, middleware...).Run(ctx, value)
		if err != nil {
			return nil, err
		}
		value = output
	}

	return value, nil
}

// compose applies middleware so the first entry becomes the outermost wrapper.
func compose(step Step, middleware ...Middleware) Step {
	wrapped := step
	for i := len(middleware) - 1; i >= 0; i-- {
		wrapped = middleware[i](wrapped)
	}

	return wrapped
}
