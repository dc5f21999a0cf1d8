package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
)

// Widget kinds
const (
	KindSandbox = "sandbox"
	KindQuiz    = "quiz"
)

const (
	DefaultIdleTTL      = 30 * time.Minute
	DefaultMaxInstances = 1000
)

var (
	ErrNotFound       = errors.New("workspace: widget not found")
	ErrLimitReached   = errors.New("workspace: widget limit reached")
	ErrInvalidRequest = errors.New("workspace: invalid mount request")
	ErrNoLessons      = errors.New("workspace: no lesson catalog configured")
)

// Lessons resolves widget seeds authored in lesson files.
type Lessons interface {
	Sandbox(slug, blockID string) (sandbox.Seed, error)
	Quiz(slug, blockID string) ([]quiz.Question, error)
}

// Completion describes a submitted quiz.
type Completion struct {
	WidgetID    id.WidgetID
	Lesson      string
	Block       string
	Score       int
	Total       int
	Tier        quiz.Tier
	CompletedAt time.Time
}

// Config bounds the workspace.
type Config struct {
	IdleTTL       time.Duration
	MaxInstances  int
	SweepInterval time.Duration
}

// SandboxRequest mounts a sandbox from an explicit seed or a lesson block.
type SandboxRequest struct {
	Seed   *sandbox.Seed
	Lesson string
	Block  string
}

// QuizRequest mounts a quiz from explicit questions or a lesson block.
type QuizRequest struct {
	Questions []quiz.Question
	Lesson    string
	Block     string
	Shuffle   bool
	Limit     int
}

// Mount describes a mounted widget.
type Mount struct {
	ID         id.WidgetID `json:"id"`
	Kind       string      `json:"kind"`
	Lesson     string      `json:"lesson,omitempty"`
	Block      string      `json:"block,omitempty"`
	MountedAt  time.Time   `json:"mounted_at"`
	LastActive time.Time   `json:"last_active"`
}

// Stats summarizes the workspace.
type Stats struct {
	Sandboxes    int    `json:"sandboxes"`
	Quizzes      int    `json:"quizzes"`
	MaxInstances int    `json:"max_instances"`
	Mounted      uint64 `json:"mounted_total"`
	Expired      uint64 `json:"expired_total"`
}

type widget interface {
	LastActive() time.Time
	Close()
}

type entry struct {
	mount   Mount
	widget  widget
	sandbox *sandbox.Widget
	quiz    *quiz.Widget
}

// Manager owns every mounted widget instance.
type Manager struct {
	cfg         Config
	sandboxOpts sandbox.Options
	lessons     Lessons
	onComplete  func(Completion)
	logger      *zap.Logger
	metrics     *monitoring.Metrics

	mu      sync.RWMutex
	entries map[id.WidgetID]*entry // Protected by mu
	mounted uint64
	expired uint64
}

// NewManager creates a workspace. sandboxOpts is the template every mounted
// sandbox is created with.
func NewManager(cfg Config, sandboxOpts sandbox.Options, lessons Lessons, logger *zap.Logger) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = DefaultMaxInstances
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.IdleTTL / 4
	}

	logger = logging.OrNop(logger)
	if sandboxOpts.Logger == nil {
		sandboxOpts.Logger = logger
	}

	return &Manager{
		cfg:         cfg,
		sandboxOpts: sandboxOpts,
		lessons:     lessons,
		logger:      logger,
		entries:     make(map[id.WidgetID]*entry),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	m.sandboxOpts.Metrics = metrics
	return m
}

// OnComplete registers fn to receive every quiz submission.
func (m *Manager) OnComplete(fn func(Completion)) *Manager {
	m.onComplete = fn
	return m
}

// MountSandbox creates a sandbox instance.
func (m *Manager) MountSandbox(req SandboxRequest) (*sandbox.Widget, error) {
	var seed sandbox.Seed
	switch {
	case req.Seed != nil:
		seed = *req.Seed
	case req.Lesson != "" && req.Block != "":
		if m.lessons == nil {
			return nil, ErrNoLessons
		}
		s, err := m.lessons.Sandbox(req.Lesson, req.Block)
		if err != nil {
			return nil, err
		}
		seed = s
	default:
		return nil, fmt.Errorf("%w: need a seed or a lesson and block", ErrInvalidRequest)
	}

	widgetID := id.NewSandboxID()
	w, err := sandbox.New(widgetID, seed, m.sandboxOpts)
	if err != nil {
		return nil, err
	}

	if err := m.add(&entry{
		mount:   Mount{ID: widgetID, Kind: KindSandbox, Lesson: req.Lesson, Block: req.Block},
		widget:  w,
		sandbox: w,
	}); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// MountQuiz creates a quiz instance.
func (m *Manager) MountQuiz(req QuizRequest) (*quiz.Widget, error) {
	var questions []quiz.Question
	switch {
	case len(req.Questions) > 0:
		questions = req.Questions
	case req.Lesson != "" && req.Block != "":
		if m.lessons == nil {
			return nil, ErrNoLessons
		}
		qs, err := m.lessons.Quiz(req.Lesson, req.Block)
		if err != nil {
			return nil, err
		}
		questions = qs
	default:
		return nil, fmt.Errorf("%w: need questions or a lesson and block", ErrInvalidRequest)
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}

	widgetID := id.NewQuizID()
	lesson, block := req.Lesson, req.Block
	w, err := quiz.New(widgetID, questions, quiz.Options{
		Shuffle: req.Shuffle,
		Limit:   req.Limit,
		OnComplete: func(r quiz.Result) {
			m.complete(Completion{
				WidgetID:    r.WidgetID,
				Lesson:      lesson,
				Block:       block,
				Score:       r.Score,
				Total:       r.Total,
				Tier:        r.Tier,
				CompletedAt: time.Now(),
			})
		},
		Logger:  m.logger,
		Metrics: m.metrics,
	})
	if err != nil {
		return nil, err
	}

	if err := m.add(&entry{
		mount:  Mount{ID: widgetID, Kind: KindQuiz, Lesson: lesson, Block: block},
		widget: w,
		quiz:   w,
	}); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (m *Manager) add(e *entry) error {
	e.mount.MountedAt = time.Now()

	m.mu.Lock()
	if len(m.entries) >= m.cfg.MaxInstances {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d instances mounted", ErrLimitReached, m.cfg.MaxInstances)
	}
	m.entries[e.mount.ID] = e
	m.mounted++
	m.mu.Unlock()

	m.metrics.IncWidgetsMounted(e.mount.Kind)
	m.updateGauges()
	m.logger.Debug("widget mounted",
		zap.String("widget_id", e.mount.ID.String()),
		zap.String("kind", e.mount.Kind),
		zap.String("lesson", e.mount.Lesson))
	return nil
}

func (m *Manager) complete(c Completion) {
	if m.onComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("quiz completion handler panicked",
				zap.String("widget_id", c.WidgetID.String()),
				zap.Any("panic", r))
		}
	}()
	m.onComplete(c)
}

// Sandbox returns a mounted sandbox.
func (m *Manager) Sandbox(widgetID id.WidgetID) (*sandbox.Widget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[widgetID]
	if !ok || e.sandbox == nil {
		return nil, fmt.Errorf("%w: sandbox %s", ErrNotFound, widgetID)
	}
	return e.sandbox, nil
}

// Quiz returns a mounted quiz.
func (m *Manager) Quiz(widgetID id.WidgetID) (*quiz.Widget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[widgetID]
	if !ok || e.quiz == nil {
		return nil, fmt.Errorf("%w: quiz %s", ErrNotFound, widgetID)
	}
	return e.quiz, nil
}

// Kind reports what kind of widget widgetID is.
func (m *Manager) Kind(widgetID id.WidgetID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[widgetID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, widgetID)
	}
	return e.mount.Kind, nil
}

// Unmount closes and removes a widget.
func (m *Manager) Unmount(widgetID id.WidgetID) error {
	m.mu.Lock()
	e, ok := m.entries[widgetID]
	if ok {
		delete(m.entries, widgetID)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, widgetID)
	}

	e.widget.Close()
	m.updateGauges()
	m.logger.Debug("widget unmounted", zap.String("widget_id", widgetID.String()))
	return nil
}

// List returns every mounted widget, oldest first.
func (m *Manager) List() []Mount {
	m.mu.RLock()
	mounts := make([]Mount, 0, len(m.entries))
	for _, e := range m.entries {
		mount := e.mount
		mount.LastActive = e.widget.LastActive()
		mounts = append(mounts, mount)
	}
	m.mu.RUnlock()

	sort.Slice(mounts, func(i, j int) bool {
		if !mounts[i].MountedAt.Equal(mounts[j].MountedAt) {
			return mounts[i].MountedAt.Before(mounts[j].MountedAt)
		}
		return mounts[i].ID < mounts[j].ID
	})
	return mounts
}

// Stats returns workspace counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		MaxInstances: m.cfg.MaxInstances,
		Mounted:      m.mounted,
		Expired:      m.expired,
	}
	for _, e := range m.entries {
		switch e.mount.Kind {
		case KindSandbox:
			s.Sandboxes++
		case KindQuiz:
			s.Quizzes++
		}
	}
	return s
}

// Sweep unmounts widgets idle since before now minus the idle TTL.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var idle []*entry
	for widgetID, e := range m.entries {
		if e.widget.LastActive().Before(cutoff) {
			idle = append(idle, e)
			delete(m.entries, widgetID)
		}
	}
	m.expired += uint64(len(idle))
	m.mu.Unlock()

	for _, e := range idle {
		e.widget.Close()
		m.metrics.IncWidgetsExpired(e.mount.Kind)
	}
	if len(idle) > 0 {
		m.updateGauges()
		m.logger.Info("idle widgets unmounted", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps idle widgets until ctx is done, then unmounts everything.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Close unmounts every widget.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[id.WidgetID]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		e.widget.Close()
	}
	m.updateGauges()
}

func (m *Manager) updateGauges() {
	if m.metrics == nil {
		return
	}
	s := m.Stats()
	m.metrics.SetWidgetsActive(KindSandbox, s.Sandboxes)
	m.metrics.SetWidgetsActive(KindQuiz, s.Quizzes)
}
