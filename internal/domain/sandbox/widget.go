package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
	"github.com/GriffinCanCode/LearnReact/internal/shared/utils"
)

const (
	// SuccessMessage is shown when a run completes without producing a value.
	SuccessMessage = "Code executed successfully!"

	DefaultLanguage       = "jsx"
	DefaultFileName       = "example.jsx"
	DefaultFeedbackWindow = 2 * time.Second

	copyLabel   = "Copy"
	copiedLabel = "Copied!"
)

var (
	ErrNoEvaluator   = errors.New("sandbox: evaluator is required")
	ErrNoClipboard   = errors.New("sandbox: no clipboard available")
	ErrClosed        = errors.New("sandbox: widget is unmounted")
	ErrInvalidSource = errors.New("sandbox: invalid source")
)

// Seed is the caller-supplied content a sandbox is mounted with.
type Seed struct {
	InitialCode  string `json:"initial_code" yaml:"code"`
	Language     string `json:"language,omitempty" yaml:"language"`
	FileName     string `json:"file_name,omitempty" yaml:"file"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions"`
}

// Options carries the widget's collaborators.
type Options struct {
	Evaluator      Evaluator
	Clipboard      Clipboard
	Bindings       Bindings
	FeedbackWindow time.Duration
	MaxSourceBytes int
	Logger         *zap.Logger
	Metrics        *monitoring.Metrics
}

// Snapshot is an immutable view of a sandbox's state.
type Snapshot struct {
	ID                 id.WidgetID `json:"id"`
	Kind               string      `json:"kind"`
	Buffer             string      `json:"buffer"`
	InitialCode        string      `json:"initial_code"`
	Language           string      `json:"language"`
	FileName           string      `json:"file_name"`
	Instructions       string      `json:"instructions,omitempty"`
	LastOutput         *string     `json:"last_output"`
	LastError          *string     `json:"last_error"`
	Console            []string    `json:"console"`
	CopyFeedbackActive bool        `json:"copy_feedback_active"`
	CopyLabel          string      `json:"copy_label"`
	Modified           bool        `json:"modified"`
	Runs               int         `json:"runs"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Widget is one mounted code sandbox. Safe for concurrent use.
type Widget struct {
	id   id.WidgetID
	seed Seed

	evaluator Evaluator
	clipboard Clipboard
	bindings  Bindings
	maxSource int
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	runMu sync.Mutex // one run at a time

	mu         sync.Mutex
	buffer     string
	lastOutput *string
	lastError  *string
	console    []string
	runs       int
	updatedAt  time.Time
	closed     bool
	watchers   map[int]func(Snapshot)
	nextWatch  int

	copied *flash
}

// New mounts a sandbox seeded with seed.
func New(widgetID id.WidgetID, seed Seed, opts Options) (*Widget, error) {
	if opts.Evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if opts.MaxSourceBytes <= 0 {
		opts.MaxSourceBytes = utils.MaxSourceSize
	}
	if err := utils.ValidateSource(seed.InitialCode, opts.MaxSourceBytes); err != nil {
		return nil, fmt.Errorf("%w: initial code: %v", ErrInvalidSource, err)
	}
	if seed.Language == "" {
		seed.Language = DefaultLanguage
	}
	if seed.FileName == "" {
		seed.FileName = DefaultFileName
	}
	if opts.FeedbackWindow <= 0 {
		opts.FeedbackWindow = DefaultFeedbackWindow
	}

	w := &Widget{
		id:        widgetID,
		seed:      seed,
		evaluator: opts.Evaluator,
		clipboard: opts.Clipboard,
		bindings:  opts.Bindings,
		maxSource: opts.MaxSourceBytes,
		logger:    logging.OrNop(opts.Logger).With(zap.String("widget_id", widgetID.String())),
		metrics:   opts.Metrics,
		buffer:    seed.InitialCode,
		updatedAt: time.Now(),
		watchers:  make(map[int]func(Snapshot)),
	}
	w.copied = newFlash(opts.FeedbackWindow, w.publish)
	return w, nil
}

// ID returns the widget's identifier.
func (w *Widget) ID() id.WidgetID {
	return w.id
}

// OnEdit replaces the buffer. Clears the last error; a stale output stays
// visible until the next run.
func (w *Widget) OnEdit(text string) (Snapshot, error) {
	if err := utils.ValidateSource(text, w.maxSource); err != nil {
		return w.Snapshot(), fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	w.buffer = text
	w.lastError = nil
	w.updatedAt = time.Now()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
	return snap, nil
}

// Run evaluates the current buffer. Execution failures are recorded in the
// snapshot's LastError and never returned.
func (w *Widget) Run(ctx context.Context) (Snapshot, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	source := w.buffer
	w.mu.Unlock()

	start := time.Now()
	out, err := w.evaluate(ctx, source)
	elapsed := time.Since(start)

	w.mu.Lock()
	w.console = out.Console
	w.runs++
	w.updatedAt = time.Now()
	if err != nil {
		msg := failureMessage(err)
		w.lastError = &msg
		w.lastOutput = nil
	} else {
		display := out.Value
		if out.Empty || display == "" {
			display = SuccessMessage
		}
		w.lastOutput = &display
		w.lastError = nil
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	outcome := monitoring.OutcomeSuccess
	switch {
	case errors.Is(err, ErrTimeout):
		outcome = monitoring.OutcomeTimeout
	case err != nil:
		outcome = monitoring.OutcomeError
	}
	w.metrics.RecordSandboxRun(outcome, elapsed)
	w.logger.Debug("sandbox run",
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
		zap.Int("console_lines", len(out.Console)))

	w.notify(snap)
	return snap, nil
}

func (w *Widget) evaluate(ctx context.Context, source string) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("evaluator panicked", zap.Any("panic", r))
			err = fmt.Errorf("internal evaluator error: %v", r)
		}
	}()
	return w.evaluator.Evaluate(ctx, source, w.bindings)
}

func failureMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// Reset restores the initial code and clears output, error and console.
func (w *Widget) Reset() (Snapshot, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	w.buffer = w.seed.InitialCode
	w.lastOutput = nil
	w.lastError = nil
	w.console = nil
	w.updatedAt = time.Now()
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
	return snap, nil
}

// Copy writes the current buffer to the clipboard and, on success, shows the
// copy confirmation for the feedback window. A failure never touches LastError.
func (w *Widget) Copy(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	text := w.buffer
	w.updatedAt = time.Now()
	w.mu.Unlock()

	if w.clipboard == nil {
		w.metrics.RecordCopy(monitoring.OutcomeError)
		return w.Snapshot(), ErrNoClipboard
	}

	if err := w.clipboard.WriteText(ctx, text); err != nil {
		w.metrics.RecordCopy(monitoring.OutcomeError)
		w.logger.Warn("clipboard write failed", zap.Error(err))
		return w.Snapshot(), fmt.Errorf("copy to clipboard: %w", err)
	}

	w.copied.Arm()
	w.metrics.RecordCopy(monitoring.OutcomeSuccess)

	snap := w.Snapshot()
	w.notify(snap)
	return snap, nil
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// LastActive returns when the widget was last touched by an operation.
func (w *Widget) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updatedAt
}

// Watch registers fn to receive every state change, including the copy
// confirmation reverting on its own. The returned func unregisters it.
func (w *Widget) Watch(fn func(Snapshot)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := w.nextWatch
	w.nextWatch++
	w.watchers[key] = fn

	return func() {
		w.mu.Lock()
		delete(w.watchers, key)
		w.mu.Unlock()
	}
}

// Close unmounts the widget: stops the feedback timer and drops watchers.
func (w *Widget) Close() {
	w.copied.Stop()

	w.mu.Lock()
	w.closed = true
	w.watchers = make(map[int]func(Snapshot))
	w.mu.Unlock()
}

func (w *Widget) snapshotLocked() Snapshot {
	active := w.copied.Active()
	label := copyLabel
	if active {
		label = copiedLabel
	}

	var console []string
	if len(w.console) > 0 {
		console = append([]string(nil), w.console...)
	}

	return Snapshot{
		ID:                 w.id,
		Kind:               monitoring.KindSandbox,
		Buffer:             w.buffer,
		InitialCode:        w.seed.InitialCode,
		Language:           w.seed.Language,
		FileName:           w.seed.FileName,
		Instructions:       w.seed.Instructions,
		LastOutput:         copyString(w.lastOutput),
		LastError:          copyString(w.lastError),
		Console:            console,
		CopyFeedbackActive: active,
		CopyLabel:          label,
		Modified:           w.buffer != w.seed.InitialCode,
		Runs:               w.runs,
		UpdatedAt:          w.updatedAt,
	}
}

// publish pushes the current state to watchers.
func (w *Widget) publish() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(snap)
}

func (w *Widget) notify(snap Snapshot) {
	w.mu.Lock()
	fns := make([]func(Snapshot), 0, len(w.watchers))
	for _, fn := range w.watchers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
