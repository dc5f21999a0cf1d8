package sandbox

import (
	"context"
	"errors"
)

// ErrTimeout marks an evaluation that was interrupted for running too long.
var ErrTimeout = errors.New("execution timed out")

// Bindings are the named host values injected into the evaluated code's scope.
// Nothing outside this set is reachable from the snippet.
type Bindings map[string]any

// Names returns the binding names in no particular order.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	return names
}

// Output is what a successful (or partially successful) evaluation produced.
type Output struct {
	// Value is the produced value coerced to a display string.
	Value string
	// Empty is true when the code produced no value (undefined or null).
	Empty bool
	// Console holds lines written through console.* during the attempt,
	// including attempts that later failed.
	Console []string
}

// Evaluator executes source text with a fixed set of bindings.
// A returned error is an execution failure; its message is user-visible.
type Evaluator interface {
	Evaluate(ctx context.Context, source string, bindings Bindings) (Output, error)
}

// Clipboard writes text to the user's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, source string, bindings Bindings) (Output, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, source string, bindings Bindings) (Output, error) {
	return f(ctx, source, bindings)
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}
