package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
)

const recordTimeout = 5 * time.Second

// AttemptStore persists finished quiz attempts.
type AttemptStore interface {
	RecordAttempt(ctx context.Context, a storage.Attempt) (storage.Attempt, error)
}

// ProgressRecorder writes quiz completions to the store. Writes go through a
// circuit breaker so a broken database does not stall every submit.
type ProgressRecorder struct {
	store   AttemptStore
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// NewProgressRecorder creates a recorder with the default breaker settings.
func NewProgressRecorder(store AttemptStore, logger *zap.Logger) *ProgressRecorder {
	return newProgressRecorder(store, resilience.Settings{
		Cooldown: 30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	}, logger)
}

func newProgressRecorder(store AttemptStore, settings resilience.Settings, logger *zap.Logger) *ProgressRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("breaker state changed",
			zap.String("breaker", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	}
	return &ProgressRecorder{
		store:   store,
		breaker: resilience.New("progress-db", settings),
		logger:  logger,
	}
}

// Record stores one completion. Failures are logged, never returned: the
// learner's result is already in the widget's review.
func (p *ProgressRecorder) Record(c workspace.Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	attempt := storage.Attempt{
		WidgetID:    c.WidgetID.String(),
		Lesson:      c.Lesson,
		QuizID:      c.Block,
		Score:       c.Score,
		Total:       c.Total,
		Tier:        string(c.Tier),
		CompletedAt: c.CompletedAt,
	}
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		_, err := p.store.RecordAttempt(ctx, attempt)
		return err
	})
	if err != nil {
		p.logger.Warn("Failed to record quiz attempt",
			zap.String("widget_id", attempt.WidgetID),
			zap.String("lesson", attempt.Lesson),
			zap.Error(err))
		return
	}
	p.logger.Debug("Quiz attempt recorded",
		zap.String("widget_id", attempt.WidgetID),
		zap.Int("score", attempt.Score),
		zap.Int("total", attempt.Total))
}

// Status reports the breaker guarding the store.
func (p *ProgressRecorder) Status() resilience.Status {
	return p.breaker.Status()
}
