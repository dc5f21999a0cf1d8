package content

import (
	"errors"
	"time"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
)

// Block kinds
const (
	KindSandbox = "sandbox"
	KindQuiz    = "quiz"
)

var (
	ErrNotFound      = errors.New("content: not found")
	ErrInvalidLesson = errors.New("content: invalid lesson")
)

// Frontmatter is the metadata header of a lesson file.
type Frontmatter struct {
	Title       string `yaml:"title" toml:"title"`
	Slug        string `yaml:"slug" toml:"slug"`
	Description string `yaml:"description" toml:"description"`
	Order       int    `yaml:"order" toml:"order"`
}

// Heading is one table-of-contents entry.
type Heading struct {
	Level  int    `json:"level"`
	Anchor string `json:"anchor"`
	Text   string `json:"text"`
}

// Block marks where an interactive widget sits in the lesson.
type Block struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Section string `json:"section,omitempty"`
	Line    int    `json:"line"`
}

// Lesson is a parsed lesson page.
type Lesson struct {
	Slug        string                     `json:"slug"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Order       int                        `json:"order"`
	HTML        string                     `json:"html"`
	TOC         []Heading                  `json:"toc"`
	Blocks      []Block                    `json:"blocks"`
	Sandboxes   map[string]sandbox.Seed    `json:"sandboxes"`
	Quizzes     map[string][]quiz.Question `json:"-"`
	Source      string                     `json:"source"`
	LoadedAt    time.Time                  `json:"loaded_at"`
}

// Summary is the catalog listing form of a lesson.
type Summary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Path        string `json:"path"`
}

// Summary returns the listing form.
func (l *Lesson) Summary() Summary {
	return Summary{
		Slug:        l.Slug,
		Title:       l.Title,
		Description: l.Description,
		Order:       l.Order,
		Path:        "/" + l.Slug,
	}
}
