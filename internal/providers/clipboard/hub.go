package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
)

var (
	ErrTooLarge = errors.New("clipboard: text exceeds size limit")
	ErrClosed   = errors.New("clipboard: hub is closed")
)

const (
	DefaultHistory  = 50
	DefaultMaxBytes = 1 << 20
)

// Entry is one piece of copied text.
type Entry struct {
	ID       id.EntryID `json:"id"`
	Text     string     `json:"text"`
	Source   string     `json:"source,omitempty"`
	Size     int        `json:"size"`
	CopiedAt time.Time  `json:"copied_at"`
}

// Stats summarises clipboard usage.
type Stats struct {
	TotalCopies int        `json:"total_copies"`
	TotalBytes  int64      `json:"total_bytes"`
	Rejected    int        `json:"rejected"`
	HistorySize int        `json:"history_size"`
	Subscribers int        `json:"subscribers"`
	LastCopy    *time.Time `json:"last_copy,omitempty"`
}

// Config sizes the hub.
type Config struct {
	History  int
	MaxBytes int
}

type sourceKey struct{}

// WithSource tags writes made with ctx so subscribers can tell where they came from.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFrom(ctx context.Context) string {
	s, _ := ctx.Value(sourceKey{}).(string)
	return s
}

// Hub is the server-side clipboard. Each write is kept in a bounded history
// and fanned out to subscribers, which relay it to the browser.
type Hub struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	history []Entry // newest last
	subs    map[int]func(Entry)
	nextSub int
	stats   Stats
	closed  bool
}

// NewHub creates a clipboard hub.
func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if cfg.History <= 0 {
		cfg.History = DefaultHistory
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	return &Hub{
		cfg:    cfg,
		logger: logging.OrNop(logger),
		subs:   make(map[int]func(Entry)),
	}
}

// WriteText implements sandbox.Clipboard.
func (h *Hub) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	if len(text) > h.cfg.MaxBytes {
		h.stats.Rejected++
		h.mu.Unlock()
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(text), h.cfg.MaxBytes)
	}

	entry := Entry{
		ID:       id.NewEntryID(),
		Text:     text,
		Source:   sourceFrom(ctx),
		Size:     len(text),
		CopiedAt: time.Now(),
	}
	h.history = append(h.history, entry)
	if over := len(h.history) - h.cfg.History; over > 0 {
		h.history = append([]Entry(nil), h.history[over:]...)
	}
	h.stats.TotalCopies++
	h.stats.TotalBytes += int64(entry.Size)
	copiedAt := entry.CopiedAt
	h.stats.LastCopy = &copiedAt

	subs := make([]func(Entry), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	h.logger.Debug("clipboard write",
		zap.String("entry_id", entry.ID.String()),
		zap.String("source", entry.Source),
		zap.Int("size", entry.Size))

	for _, fn := range subs {
		fn(entry)
	}
	return nil
}

// Latest returns the most recent entry.
func (h *Hub) Latest() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.history) == 0 {
		return Entry{}, false
	}
	return h.history[len(h.history)-1], true
}

// History returns up to limit entries, newest first. limit <= 0 returns all.
func (h *Hub) History(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, h.history[i])
	}
	return out
}

// Clear drops the history.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = nil
}

// Subscribe registers fn for every successful write. The returned func
// unregisters it.
func (h *Hub) Subscribe(fn func(Entry)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := h.nextSub
	h.nextSub++
	h.subs[key] = fn

	return func() {
		h.mu.Lock()
		delete(h.subs, key)
		h.mu.Unlock()
	}
}

// Stats returns usage statistics.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := h.stats
	s.HistorySize = len(h.history)
	s.Subscribers = len(h.subs)
	return s
}

// Close rejects further writes and drops subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.subs = make(map[int]func(Entry))
}
