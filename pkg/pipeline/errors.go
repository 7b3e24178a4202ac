package pipeline

import "fmt"

// DispatchError is a translated step failure carrying the failing step's
// name and underlying cause. Its message is the only detail surfaced to
// clients; stack traces and internal state stay out of it.
type DispatchError struct {
	Step  string
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("error in %s: %v", e.Step, e.Cause)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}
