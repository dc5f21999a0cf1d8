package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
)

// Phase is the quiz lifecycle stage.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseResults   Phase = "results"
)

// Contract violations. None of them changes the widget's state.
var (
	ErrInvalidChoice   = errors.New("quiz: choice out of range")
	ErrOutOfBounds     = errors.New("quiz: navigation out of bounds")
	ErrNotAnswering    = errors.New("quiz: not accepting answers")
	ErrNotLastQuestion = errors.New("quiz: submit is only allowed on the last question")
	ErrNotSubmitted    = errors.New("quiz: results are not available before submit")
	ErrClosed          = errors.New("quiz: widget is unmounted")
)

// Result is reported once each time a quiz is submitted.
type Result struct {
	WidgetID id.WidgetID
	Score    int
	Total    int
	Tier     Tier
}

// Options configures a quiz at mount time.
type Options struct {
	Shuffle    bool
	Limit      int
	Rand       *rand.Rand
	OnComplete func(Result)
	Logger     *zap.Logger
	Metrics    *monitoring.Metrics
}

// CurrentQuestion is the question on screen, without its answer.
type CurrentQuestion struct {
	Index    int      `json:"index"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices"`
	Selected *int     `json:"selected"`
}

// Snapshot is an immutable view of a quiz's state.
type Snapshot struct {
	ID              id.WidgetID     `json:"id"`
	Kind            string          `json:"kind"`
	Phase           Phase           `json:"phase"`
	CurrentIndex    int             `json:"current_index"`
	Total           int             `json:"total"`
	Question        CurrentQuestion `json:"question"`
	SelectedAnswers map[int]int     `json:"selected_answers"`
	Answered        int             `json:"answered"`
	Score           *int            `json:"score"`
	Tier            Tier            `json:"tier,omitempty"`
	CanGoNext       bool            `json:"can_go_next"`
	CanGoPrevious   bool            `json:"can_go_previous"`
	CanSubmit       bool            `json:"can_submit"`
	Attempts        int             `json:"attempts"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Widget is one mounted quiz. Safe for concurrent use.
type Widget struct {
	id         id.WidgetID
	questions  []Question
	onComplete func(Result)
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	mu           sync.Mutex
	currentIndex int
	selected     map[int]int
	score        int
	phase        Phase
	attempts     int
	updatedAt    time.Time
	closed       bool
	watchers     map[int]func(Snapshot)
	nextWatch    int
}

// New mounts a quiz over questions.
func New(widgetID id.WidgetID, questions []Question, opts Options) (*Widget, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidBank)
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidBank, i, err)
		}
	}

	played := make([]Question, len(questions))
	for i, q := range questions {
		played[i] = q.clone()
	}
	if opts.Shuffle {
		played = ShuffleWithLimit(played, opts.Limit, opts.Rand)
	} else if opts.Limit > 0 && opts.Limit < len(played) {
		played = played[:opts.Limit]
	}

	return &Widget{
		id:         widgetID,
		questions:  played,
		onComplete: opts.OnComplete,
		logger:     logging.OrNop(opts.Logger).With(zap.String("widget_id", widgetID.String())),
		metrics:    opts.Metrics,
		selected:   make(map[int]int),
		phase:      PhaseAnswering,
		updatedAt:  time.Now(),
		watchers:   make(map[int]func(Snapshot)),
	}, nil
}

// ID returns the widget's identifier.
func (w *Widget) ID() id.WidgetID {
	return w.id
}

// Questions returns the questions being played, in play order.
func (w *Widget) Questions() []Question {
	out := make([]Question, len(w.questions))
	for i, q := range w.questions {
		out[i] = q.clone()
	}
	return out
}

// SelectAnswer records choice for the current question, replacing any
// earlier choice for it.
func (w *Widget) SelectAnswer(choice int) (Snapshot, error) {
	return w.mutate(func() error {
		if w.phase != PhaseAnswering {
			return ErrNotAnswering
		}
		q := w.questions[w.currentIndex]
		if choice < 0 || choice >= len(q.Choices) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChoice, choice, len(q.Choices))
		}
		w.selected[w.currentIndex] = choice
		return nil
	})
}

// GoNext moves to the following question. No answer is required.
func (w *Widget) GoNext() (Snapshot, error) {
	return w.mutate(func() error {
		if w.phase != PhaseAnswering {
			return ErrNotAnswering
		}
		if w.currentIndex >= len(w.questions)-1 {
			return ErrOutOfBounds
		}
		w.currentIndex++
		return nil
	})
}

// GoPrevious moves back one question, keeping recorded answers.
func (w *Widget) GoPrevious() (Snapshot, error) {
	return w.mutate(func() error {
		if w.phase != PhaseAnswering {
			return ErrNotAnswering
		}
		if w.currentIndex <= 0 {
			return ErrOutOfBounds
		}
		w.currentIndex--
		return nil
	})
}

// Submit scores every question and moves to the results phase. Only valid on
// the last question; unanswered questions count as incorrect.
func (w *Widget) Submit() (Snapshot, error) {
	var result *Result

	snap, err := w.mutate(func() error {
		if w.phase != PhaseAnswering {
			return ErrNotAnswering
		}
		if w.currentIndex != len(w.questions)-1 {
			return ErrNotLastQuestion
		}

		score := 0
		for i, q := range w.questions {
			if choice, ok := w.selected[i]; ok && choice == q.Correct {
				score++
			}
		}
		w.score = score
		w.phase = PhaseResults
		w.attempts++

		result = &Result{
			WidgetID: w.id,
			Score:    score,
			Total:    len(w.questions),
			Tier:     TierFor(score, len(w.questions)),
		}
		return nil
	})
	if err != nil {
		return snap, err
	}

	w.metrics.RecordQuizSubmission(string(result.Tier))
	w.logger.Info("quiz submitted",
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
		zap.String("tier", string(result.Tier)))
	if w.onComplete != nil {
		w.onComplete(*result)
	}
	return snap, nil
}

// Restart returns to the first question with no answers recorded.
func (w *Widget) Restart() (Snapshot, error) {
	return w.mutate(func() error {
		w.currentIndex = 0
		w.selected = make(map[int]int)
		w.score = 0
		w.phase = PhaseAnswering
		return nil
	})
}

// Review returns the result view. Only available after Submit.
func (w *Widget) Review() (Review, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return Review{}, ErrClosed
	}
	if w.phase != PhaseResults {
		return Review{}, ErrNotSubmitted
	}
	return buildReview(w.questions, w.selected, w.score), nil
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

// Watch registers fn to receive every state change. The returned func
// unregisters it.
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

// Close unmounts the widget.
func (w *Widget) Close() {
	w.mu.Lock()
	w.closed = true
	w.watchers = make(map[int]func(Snapshot))
	w.mu.Unlock()
}

// mutate applies op under the lock. A failing op must leave state untouched;
// the returned snapshot then reflects the unchanged state.
func (w *Widget) mutate(op func() error) (Snapshot, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if err := op(); err != nil {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		return snap, err
	}
	w.updatedAt = time.Now()
	snap := w.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(w.watchers))
	for _, fn := range w.watchers {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return snap, nil
}

func (w *Widget) snapshotLocked() Snapshot {
	q := w.questions[w.currentIndex]
	current := CurrentQuestion{
		Index:   w.currentIndex,
		Prompt:  q.Prompt,
		Choices: append([]string(nil), q.Choices...),
	}
	if choice, ok := w.selected[w.currentIndex]; ok {
		c := choice
		current.Selected = &c
	}

	selected := make(map[int]int, len(w.selected))
	for k, v := range w.selected {
		selected[k] = v
	}

	last := len(w.questions) - 1
	answering := w.phase == PhaseAnswering
	snap := Snapshot{
		ID:              w.id,
		Kind:            monitoring.KindQuiz,
		Phase:           w.phase,
		CurrentIndex:    w.currentIndex,
		Total:           len(w.questions),
		Question:        current,
		SelectedAnswers: selected,
		Answered:        len(w.selected),
		CanGoNext:       answering && w.currentIndex < last,
		CanGoPrevious:   answering && w.currentIndex > 0,
		CanSubmit:       answering && w.currentIndex == last,
		Attempts:        w.attempts,
		UpdatedAt:       w.updatedAt,
	}
	if w.phase == PhaseResults {
		score := w.score
		snap.Score = &score
		snap.Tier = TierFor(score, len(w.questions))
	}
	return snap
}
