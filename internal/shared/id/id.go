// Package id provides centralized ID generation for the backend.
//
// Every mounted widget, clipboard entry and WebSocket connection gets a
// prefixed ULID so logs stay readable and IDs sort by creation time:
//
//	sbx_01HV...   sandbox widget
//	quiz_01HV...  quiz widget
//	clip_01HV...  clipboard entry
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WidgetID identifies a mounted widget instance
type WidgetID string

// EntryID identifies a clipboard entry
type EntryID string

// RequestID identifies an API request
type RequestID string

const (
	SandboxPrefix = "sbx"
	QuizPrefix    = "quiz"
	EntryPrefix   = "clip"
	RequestPrefix = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Tests use it with deterministic readers.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewSandboxID generates an ID for a sandbox widget
func NewSandboxID() WidgetID {
	return WidgetID(Default().GenerateWithPrefix(SandboxPrefix))
}

// NewQuizID generates an ID for a quiz widget
func NewQuizID() WidgetID {
	return WidgetID(Default().GenerateWithPrefix(QuizPrefix))
}

// NewEntryID generates a clipboard entry ID
func NewEntryID() EntryID {
	return EntryID(Default().GenerateWithPrefix(EntryPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id WidgetID) String() string  { return string(id) }
func (id EntryID) String() string   { return string(id) }
func (id RequestID) String() string { return string(id) }

// Prefix returns the prefix part of a prefixed ID, or "" when there is none
func (id WidgetID) Prefix() string {
	prefix, _, ok := strings.Cut(string(id), "_")
	if !ok {
		return ""
	}
	return prefix
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsValidPrefixed checks a "prefix_ULID" string against the expected prefix
func IsValidPrefixed(id, prefix string) bool {
	p, rest, ok := strings.Cut(id, "_")
	if !ok || p != prefix {
		return false
	}
	return IsValid(rest)
}

// Timestamp extracts the timestamp from a ULID or a prefixed ULID
func Timestamp(id string) (time.Time, error) {
	if _, rest, ok := strings.Cut(id, "_"); ok {
		id = rest
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
