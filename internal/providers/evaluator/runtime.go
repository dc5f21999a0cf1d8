package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"

	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ErrNotFunctionBody rejects source that closes the wrapping function early.
var ErrNotFunctionBody = errors.New("SyntaxError: code must be a function body")

// Runtime wraps a goja VM with the sandbox's isolation rules.
// A Runtime runs one snippet at a time.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []string
	dropped   int
	consoleMu sync.Mutex
}

// NewRuntime creates a runtime with dangerous globals removed
func NewRuntime(config Config) (*Runtime, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	r := &Runtime{config: config}
	if err := r.setup(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) setup() error {
	r.vm = goja.New()
	if r.config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	return r.setupGlobals()
}

// Execute runs source as the body of a function whose parameters are the
// binding names, so top-level return works and only the bindings are in scope.
func (r *Runtime) Execute(ctx context.Context, source string, bindings sandbox.Bindings) (sandbox.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return sandbox.Output{}, errors.New("runtime is closed")
	}
	if err := ctx.Err(); err != nil {
		return sandbox.Output{}, err
	}

	r.consoleMu.Lock()
	r.console = nil
	r.dropped = 0
	r.consoleMu.Unlock()

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		if !identifierPattern.MatchString(name) {
			return sandbox.Output{}, fmt.Errorf("invalid binding name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]goja.Value, len(names))
	for i, name := range names {
		args[i] = r.toValue(bindings[name])
	}

	stop := r.watchdog(ctx)
	val, err := r.run(source, names, args)
	stop()

	out := sandbox.Output{Console: r.collectConsole()}
	if err != nil {
		return out, r.failure(ctx, err)
	}

	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		out.Empty = true
		return out, nil
	}
	out.Value = r.display(val)
	return out, nil
}

func (r *Runtime) run(source string, names []string, args []goja.Value) (val goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("runtime panic: %v", p)
		}
	}()

	params := strings.Join(names, ", ")
	if err := checkFunctionBody(params, source); err != nil {
		return nil, err
	}

	wrapped := "(function(" + params + ") {\n" + source + "\n})"
	fnVal, err := r.vm.RunScript("snippet.js", wrapped)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, errors.New("snippet did not compile to a function")
	}
	return fn(goja.Undefined(), args...)
}

// checkFunctionBody rejects source that closes the wrapping function early.
// A real body parses the same way inside a function declaration and a
// function expression; an escape breaks one of them or leaves extra
// statements behind. Syntax errors in both are left to the compiler.
func checkFunctionBody(params, source string) error {
	decl, declErr := goja.Parse("snippet.js", "function snippet("+params+") {\n"+source+"\n}")
	expr, exprErr := goja.Parse("snippet.js", "(function("+params+") {\n"+source+"\n})")
	switch {
	case declErr != nil && exprErr != nil:
		return nil
	case declErr != nil || exprErr != nil:
		return ErrNotFunctionBody
	}

	if len(decl.Body) != 1 || len(expr.Body) != 1 {
		return ErrNotFunctionBody
	}
	if _, ok := decl.Body[0].(*ast.FunctionDeclaration); !ok {
		return ErrNotFunctionBody
	}
	if _, ok := expr.Body[0].(*ast.ExpressionStatement); !ok {
		return ErrNotFunctionBody
	}
	return nil
}

// watchdog interrupts the VM on timeout or cancellation. The returned func
// stops it and waits, so no interrupt can land after it returns.
func (r *Runtime) watchdog(ctx context.Context) func() {
	done := make(chan struct{})
	exited := make(chan struct{})
	vm := r.vm

	timeout := r.config.Timeout

	go func() {
		defer close(exited)
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-timer.C:
			vm.Interrupt(sandbox.ErrTimeout)
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-exited
		vm.ClearInterrupt()
	}
}

// failure converts a goja error into the user-visible execution failure.
func (r *Runtime) failure(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok && !errors.Is(cause, sandbox.ErrTimeout) {
			return fmt.Errorf("execution cancelled: %w", cause)
		}
		return fmt.Errorf("%w after %s", sandbox.ErrTimeout, r.config.Timeout)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("execution cancelled: %w", ctx.Err())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return errors.New(thrownMessage(exception.Value()))
	}

	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		return errors.New(syntax.Error())
	}
	return err
}

// thrownMessage returns the thrown value's message property when it has one,
// otherwise its string form.
func thrownMessage(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) && !goja.IsNull(msg) {
			if s := msg.String(); s != "" {
				return s
			}
		}
	}
	return v.String()
}

// display coerces a value: primitives use JS string conversion, functions
// their source, other objects JSON.
func (r *Runtime) display(val goja.Value) string {
	obj, ok := val.(*goja.Object)
	if !ok {
		return val.String()
	}
	if _, isFn := goja.AssertFunction(val); isFn {
		return val.String()
	}

	jsonObj := r.vm.Get("JSON").ToObject(r.vm)
	stringify, ok := goja.AssertFunction(jsonObj.Get("stringify"))
	if !ok {
		return obj.String()
	}
	s, err := stringify(jsonObj, obj, goja.Undefined(), r.vm.ToValue(2))
	if err != nil || s == nil || goja.IsUndefined(s) {
		return obj.String()
	}
	return s.String()
}

func (r *Runtime) toValue(v any) goja.Value {
	if ns, ok := v.(Namespace); ok {
		return ns.Install(r.vm)
	}
	return r.vm.ToValue(v)
}

// setupGlobals removes host access and installs console capture
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	if err := r.vm.Set("console", console); err != nil {
		return err
	}

	// Timers never fire: runs are synchronous.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !r.config.EnableConsole {
			return goja.Undefined()
		}

		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = consoleString(arg)
		}
		line := strings.Join(parts, " ")
		if level != "log" {
			line = "[" + level + "] " + line
		}

		r.consoleMu.Lock()
		if r.config.MaxConsoleLine > 0 && len(r.console) >= r.config.MaxConsoleLine {
			r.dropped++
		} else {
			r.console = append(r.console, line)
		}
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

func consoleString(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if _, isFn := goja.AssertFunction(v); !isFn {
			if b, err := json.Marshal(obj.Export()); err == nil {
				return string(b)
			}
		}
	}
	return v.String()
}

func (r *Runtime) collectConsole() []string {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()

	if len(r.console) == 0 && r.dropped == 0 {
		return nil
	}
	lines := append([]string(nil), r.console...)
	if r.dropped > 0 {
		lines = append(lines, fmt.Sprintf("... %d more lines", r.dropped))
	}
	return lines
}

// Reset replaces the VM so nothing a snippet defined survives into the next run
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.consoleMu.Lock()
	r.console = nil
	r.dropped = 0
	r.consoleMu.Unlock()

	return r.setup()
}

// Close releases the VM
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
