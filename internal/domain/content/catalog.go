package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
)

// Pattern matches lesson files under a content root.
const Pattern = "**/*.md"

//go:embed lessons/*.md
var builtin embed.FS

// Builtin returns the lessons shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "lessons")
	if err != nil {
		panic(err)
	}
	return sub
}

// Catalog holds the loaded lessons. Safe for concurrent use; Load swaps the
// whole set atomically so readers never see a half-loaded catalog.
type Catalog struct {
	parser  *Parser
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	source  fs.FS
	lessons map[string]*Lesson
	ordered []*Lesson
}

// NewCatalog creates an empty catalog.
func NewCatalog(logger *zap.Logger, metrics *monitoring.Metrics) *Catalog {
	return &Catalog{
		parser:  NewParser(),
		logger:  logging.OrNop(logger),
		metrics: metrics,
		lessons: make(map[string]*Lesson),
	}
}

// Open loads lessons from dir, or the built-in set when dir is empty.
func Open(dir string, logger *zap.Logger, metrics *monitoring.Metrics) (*Catalog, error) {
	c := NewCatalog(logger, metrics)

	source := Builtin()
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content dir %s is not a directory", dir)
		}
		source = os.DirFS(dir)
	}

	if err := c.Load(source); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses every lesson in fsys and replaces the catalog contents.
// On error the previous contents are kept.
func (c *Catalog) Load(fsys fs.FS) error {
	start := time.Now()

	matches, err := doublestar.Glob(fsys, Pattern)
	if err != nil {
		c.metrics.RecordLessonReload(monitoring.OutcomeError)
		return fmt.Errorf("glob lessons: %w", err)
	}
	sort.Strings(matches)

	lessons := make(map[string]*Lesson, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			c.metrics.RecordLessonReload(monitoring.OutcomeError)
			return fmt.Errorf("read %s: %w", name, err)
		}
		data, err = decodeLesson(name, data)
		if err != nil {
			c.metrics.RecordLessonReload(monitoring.OutcomeError)
			return err
		}

		lesson, err := c.parser.Parse(name, data)
		if err != nil {
			c.metrics.RecordLessonReload(monitoring.OutcomeError)
			return err
		}
		if prev, dup := lessons[lesson.Slug]; dup {
			c.metrics.RecordLessonReload(monitoring.OutcomeError)
			return fmt.Errorf("%w: slug %q used by %s and %s", ErrInvalidLesson, lesson.Slug, prev.Source, name)
		}
		lesson.LoadedAt = start
		lessons[lesson.Slug] = lesson
	}

	ordered := make([]*Lesson, 0, len(lessons))
	for _, l := range lessons {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].Title < ordered[j].Title
	})

	c.mu.Lock()
	c.source = fsys
	c.lessons = lessons
	c.ordered = ordered
	c.mu.Unlock()

	c.metrics.RecordLessonReload(monitoring.OutcomeSuccess)
	c.logger.Info("lessons loaded",
		zap.Int("count", len(lessons)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Reload re-reads the last loaded source.
func (c *Catalog) Reload() error {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()

	if source == nil {
		return fmt.Errorf("catalog has no source")
	}
	return c.Load(source)
}

// List returns all lessons in reading order.
func (c *Catalog) List() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Summary, 0, len(c.ordered))
	for _, l := range c.ordered {
		out = append(out, l.Summary())
	}
	return out
}

// Len returns the number of lessons.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lessons)
}

// Get returns a lesson by slug.
func (c *Catalog) Get(slug string) (*Lesson, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lesson, ok := c.lessons[slug]
	if !ok {
		return nil, fmt.Errorf("%w: lesson %q", ErrNotFound, slug)
	}
	return lesson, nil
}

// Sandbox returns the seed of a lesson's sandbox block.
func (c *Catalog) Sandbox(slug, blockID string) (sandbox.Seed, error) {
	lesson, err := c.Get(slug)
	if err != nil {
		return sandbox.Seed{}, err
	}
	seed, ok := lesson.Sandboxes[blockID]
	if !ok {
		return sandbox.Seed{}, fmt.Errorf("%w: sandbox %q in lesson %q", ErrNotFound, blockID, slug)
	}
	return seed, nil
}

// Quiz returns a copy of a lesson's quiz bank.
func (c *Catalog) Quiz(slug, blockID string) ([]quiz.Question, error) {
	lesson, err := c.Get(slug)
	if err != nil {
		return nil, err
	}
	questions, ok := lesson.Quizzes[blockID]
	if !ok {
		return nil, fmt.Errorf("%w: quiz %q in lesson %q", ErrNotFound, blockID, slug)
	}
	return append([]quiz.Question(nil), questions...), nil
}

// Search matches query case-insensitively against lesson titles and
// descriptions. A blank query matches nothing; otherwise the query is used
// as typed, surrounding spaces included.
func (c *Catalog) Search(query string) []Summary {
	if strings.TrimSpace(query) == "" {
		return []Summary{}
	}
	needle := strings.ToLower(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	results := []Summary{}
	for _, l := range c.ordered {
		if strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Description), needle) {
			results = append(results, l.Summary())
		}
	}
	return results
}
