package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/config"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/logging"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "progress.db")
	cfg.RateLimit.Enabled = false
	cfg.Sandbox.PoolSize = 1

	srv, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, srv.Close()) })
	return srv
}

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestNewReturnsStartupErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(dir, "progress.db")
	cfg.Sandbox.PoolSize = 1
	cfg.Content.Dir = filepath.Join(dir, "does-not-exist")

	var (
		srv *Server
		err error
	)
	require.NotPanics(t, func() {
		srv, err = New(context.Background(), cfg, logging.NewNop())
	})
	require.Error(t, err)
	assert.Nil(t, srv)

	// The store opened before the failure was released.
	cfg.Content.Dir = ""
	srv, err = New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.NoError(t, srv.Close())
}

func TestCloseNilServer(t *testing.T) {
	var srv *Server
	assert.NoError(t, srv.Close())
}

func TestServerCompressesResponses(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/lessons/props", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var lesson map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &lesson))
	assert.Equal(t, "props", lesson["slug"])
}

func TestServerRegistersProviders(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services []map[string]interface{} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Services, 6)
}

type flakyStore struct {
	mu       sync.Mutex
	fail     bool
	attempts []storage.Attempt
}

func (s *flakyStore) RecordAttempt(_ context.Context, a storage.Attempt) (storage.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return storage.Attempt{}, errors.New("disk I/O error")
	}
	s.attempts = append(s.attempts, a)
	return a, nil
}

func completion() workspace.Completion {
	return workspace.Completion{
		WidgetID:    id.NewQuizID(),
		Lesson:      "props",
		Block:       "props-basics",
		Score:       3,
		Total:       4,
		Tier:        quiz.TierPerfect,
		CompletedAt: time.Unix(1700000000, 0),
	}
}

func TestProgressRecorderStoresAttempts(t *testing.T) {
	store := &flakyStore{}
	rec := NewProgressRecorder(store, nil)

	c := completion()
	rec.Record(c)

	require.Len(t, store.attempts, 1)
	got := store.attempts[0]
	assert.Equal(t, c.WidgetID.String(), got.WidgetID)
	assert.Equal(t, "props-basics", got.QuizID)
	assert.Equal(t, "perfect", got.Tier)
	assert.Equal(t, 3, got.Score)
}

func TestProgressRecorderOpensBreaker(t *testing.T) {
	store := &flakyStore{fail: true}
	rec := newProgressRecorder(store, resilience.Settings{
		Cooldown: time.Hour,
		Trip:     func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 2 },
	}, nil)

	rec.Record(completion())
	rec.Record(completion())
	assert.Equal(t, "open", rec.Status().State)

	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()

	rec.Record(completion())
	assert.Empty(t, store.attempts)
	assert.EqualValues(t, 1, rec.Status().Rejected)
}
