package sandbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
)

// scriptedEvaluator maps source text to canned results and records what ran.
type scriptedEvaluator struct {
	mu      sync.Mutex
	results map[string]Output
	errs    map[string]error
	ran     []string
}

func newScripted() *scriptedEvaluator {
	return &scriptedEvaluator{
		results: map[string]Output{
			"return 1 + 1;":     {Value: "2"},
			"console.log('hi')": {Empty: true, Console: []string{"hi"}},
		},
		errs: map[string]error{
			"throw new Error('boom')": errors.New("boom"),
			"while(true){}":           ErrTimeout,
		},
	}
}

func (s *scriptedEvaluator) Evaluate(_ context.Context, source string, _ Bindings) (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ran = append(s.ran, source)
	if err, ok := s.errs[source]; ok {
		return Output{}, err
	}
	if out, ok := s.results[source]; ok {
		return out, nil
	}
	return Output{Value: "ran: " + source}, nil
}

func (s *scriptedEvaluator) lastRan() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ran[len(s.ran)-1]
}

type recordingClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *recordingClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

func newWidget(t *testing.T, code string, opts Options) *Widget {
	t.Helper()
	if opts.Evaluator == nil {
		opts.Evaluator = newScripted()
	}
	w, err := New(id.NewSandboxID(), Seed{InitialCode: code}, opts)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestNewDefaults(t *testing.T) {
	w := newWidget(t, "return 1;", Options{})
	snap := w.Snapshot()

	assert.Equal(t, "return 1;", snap.Buffer)
	assert.Equal(t, DefaultLanguage, snap.Language)
	assert.Equal(t, DefaultFileName, snap.FileName)
	assert.Nil(t, snap.LastOutput)
	assert.Nil(t, snap.LastError)
	assert.False(t, snap.CopyFeedbackActive)
	assert.Equal(t, "Copy", snap.CopyLabel)
	assert.False(t, snap.Modified)
}

func TestNewRequiresEvaluator(t *testing.T) {
	_, err := New(id.NewSandboxID(), Seed{}, Options{Evaluator: nil})
	assert.ErrorIs(t, err, ErrNoEvaluator)
}

func TestNewRejectsOversizedSeed(t *testing.T) {
	_, err := New(id.NewSandboxID(), Seed{InitialCode: "0123456789"}, Options{
		Evaluator:      newScripted(),
		MaxSourceBytes: 4,
	})
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestRunSuccess(t *testing.T) {
	w := newWidget(t, "return 1 + 1;", Options{})

	snap, err := w.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.LastOutput)
	assert.Equal(t, "2", *snap.LastOutput)
	assert.Nil(t, snap.LastError)
	assert.Equal(t, 1, snap.Runs)
}

func TestRunFailure(t *testing.T) {
	w := newWidget(t, "throw new Error('boom')", Options{})

	snap, err := w.Run(context.Background())
	require.NoError(t, err, "execution failures never propagate")

	require.NotNil(t, snap.LastError)
	assert.Contains(t, *snap.LastError, "boom")
	assert.Nil(t, snap.LastOutput)
}

func TestRunWithoutValueShowsSuccessMessage(t *testing.T) {
	w := newWidget(t, "console.log('hi')", Options{})

	snap, _ := w.Run(context.Background())

	require.NotNil(t, snap.LastOutput)
	assert.Equal(t, SuccessMessage, *snap.LastOutput)
	assert.Equal(t, []string{"hi"}, snap.Console)
}

func TestRunExecutesCurrentBuffer(t *testing.T) {
	eval := newScripted()
	w := newWidget(t, "return 1 + 1;", Options{Evaluator: eval})

	for _, text := range []string{"a", "b", "return 1 + 1;", ""} {
		_, err := w.OnEdit(text)
		require.NoError(t, err)

		_, err = w.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, text, eval.lastRan())
	}
}

func TestOutputAndErrorAreExclusive(t *testing.T) {
	w := newWidget(t, "return 1 + 1;", Options{})
	sources := []string{"return 1 + 1;", "throw new Error('boom')", "x", "while(true){}", "console.log('hi')"}

	for _, src := range sources {
		_, err := w.OnEdit(src)
		require.NoError(t, err)
		snap, _ := w.Run(context.Background())

		assert.False(t, snap.LastOutput != nil && snap.LastError != nil, "source %q", src)
		assert.True(t, snap.LastOutput != nil || snap.LastError != nil, "source %q", src)
	}
}

func TestOnEditClearsErrorKeepsStaleOutput(t *testing.T) {
	w := newWidget(t, "return 1 + 1;", Options{})

	_, _ = w.Run(context.Background())
	snap, err := w.OnEdit("return 2;")
	require.NoError(t, err)
	require.NotNil(t, snap.LastOutput)
	assert.Equal(t, "2", *snap.LastOutput, "output stays stale until the next run")
	assert.True(t, snap.Modified)

	_, _ = w.OnEdit("throw new Error('boom')")
	snap, _ = w.Run(context.Background())
	require.NotNil(t, snap.LastError)

	snap, err = w.OnEdit("fixed")
	require.NoError(t, err)
	assert.Nil(t, snap.LastError)
}

func TestOnEditRejectsInvalidSource(t *testing.T) {
	w := newWidget(t, "ok", Options{MaxSourceBytes: 8})

	_, err := w.OnEdit("this is far too long")
	assert.ErrorIs(t, err, ErrInvalidSource)
	assert.Equal(t, "ok", w.Snapshot().Buffer)
}

func TestReset(t *testing.T) {
	tests := []struct {
		name  string
		setup func(w *Widget)
	}{
		{"fresh", func(w *Widget) {}},
		{"after output", func(w *Widget) {
			_, _ = w.Run(context.Background())
		}},
		{"after error", func(w *Widget) {
			_, _ = w.OnEdit("throw new Error('boom')")
			_, _ = w.Run(context.Background())
		}},
		{"after edit", func(w *Widget) {
			_, _ = w.OnEdit("something else")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWidget(t, "return 1 + 1;", Options{})
			tt.setup(w)

			snap, err := w.Reset()
			require.NoError(t, err)

			assert.Equal(t, "return 1 + 1;", snap.Buffer)
			assert.Nil(t, snap.LastOutput)
			assert.Nil(t, snap.LastError)
			assert.Empty(t, snap.Console)
			assert.False(t, snap.Modified)
		})
	}
}

func TestCopyArmsFeedbackAndReverts(t *testing.T) {
	clip := &recordingClipboard{}
	w := newWidget(t, "const x = 1;", Options{Clipboard: clip, FeedbackWindow: 50 * time.Millisecond})
	_, _ = w.OnEdit("const y = 2;")

	snap, err := w.Copy(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.CopyFeedbackActive)
	assert.Equal(t, "Copied!", snap.CopyLabel)
	assert.Equal(t, []string{"const y = 2;"}, clip.texts, "copies the edited buffer")

	assert.Eventually(t, func() bool {
		return !w.Snapshot().CopyFeedbackActive
	}, time.Second, 5*time.Millisecond)
}

func TestCopyRearmRestartsWindow(t *testing.T) {
	window := 150 * time.Millisecond
	w := newWidget(t, "x", Options{Clipboard: &recordingClipboard{}, FeedbackWindow: window})

	_, err := w.Copy(context.Background())
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	_, err = w.Copy(context.Background())
	require.NoError(t, err)

	// The first timer would have fired here; the re-arm must keep the flag on.
	time.Sleep(75 * time.Millisecond)
	assert.True(t, w.Snapshot().CopyFeedbackActive)

	assert.Eventually(t, func() bool {
		return !w.Snapshot().CopyFeedbackActive
	}, time.Second, 5*time.Millisecond)
}

func TestCopyFailureLeavesStateAlone(t *testing.T) {
	clip := &recordingClipboard{err: errors.New("permission denied")}
	w := newWidget(t, "throw new Error('boom')", Options{Clipboard: clip})
	_, _ = w.Run(context.Background())

	snap, err := w.Copy(context.Background())
	require.Error(t, err)
	assert.False(t, snap.CopyFeedbackActive)
	require.NotNil(t, snap.LastError)
	assert.Equal(t, "boom", *snap.LastError, "clipboard errors never reach LastError")
}

func TestCopyWithoutClipboard(t *testing.T) {
	w := newWidget(t, "x", Options{})

	snap, err := w.Copy(context.Background())
	assert.ErrorIs(t, err, ErrNoClipboard)
	assert.False(t, snap.CopyFeedbackActive)
	assert.Nil(t, snap.LastError)
}

func TestWatchReceivesRevert(t *testing.T) {
	w := newWidget(t, "x", Options{Clipboard: &recordingClipboard{}, FeedbackWindow: 50 * time.Millisecond})

	var (
		mu    sync.Mutex
		flags []bool
	)
	stop := w.Watch(func(s Snapshot) {
		mu.Lock()
		flags = append(flags, s.CopyFeedbackActive)
		mu.Unlock()
	})
	defer stop()

	_, err := w.Copy(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(flags) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []bool{true, false}, flags)
	mu.Unlock()
}

func TestEvaluatorPanicIsRecorded(t *testing.T) {
	eval := EvaluatorFunc(func(context.Context, string, Bindings) (Output, error) {
		panic("engine exploded")
	})
	w := newWidget(t, "x", Options{Evaluator: eval})

	snap, err := w.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.LastError)
	assert.Contains(t, *snap.LastError, "engine exploded")
}

func TestBindingsArePassedThrough(t *testing.T) {
	var got Bindings
	eval := EvaluatorFunc(func(_ context.Context, _ string, b Bindings) (Output, error) {
		got = b
		return Output{Value: "ok"}, nil
	})
	w := newWidget(t, "x", Options{Evaluator: eval, Bindings: Bindings{"React": "ns"}})

	_, _ = w.Run(context.Background())
	assert.Equal(t, []string{"React"}, got.Names())
}

func TestClosedWidgetRejectsOperations(t *testing.T) {
	w := newWidget(t, "x", Options{Clipboard: &recordingClipboard{}})
	w.Close()

	_, err := w.Run(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.OnEdit("y")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.Reset()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = w.Copy(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
