package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LearnReact/internal/domain/content"
	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/providers/evaluator"
	"github.com/GriffinCanCode/LearnReact/internal/providers/storage"
	"github.com/GriffinCanCode/LearnReact/internal/providers/theme"
	"github.com/GriffinCanCode/LearnReact/internal/providers/widgets"
	"github.com/GriffinCanCode/LearnReact/internal/service"
)

type testEnv struct {
	router *gin.Engine
	store  *storage.Store
	hub    *clipboard.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	flag := theme.NewFlag(store, false, nil)
	require.NoError(t, flag.Init(ctx))

	catalog, err := content.Open("", nil, nil)
	require.NoError(t, err)

	eval, err := evaluator.New(evaluator.DefaultConfig(), 1, nil)
	require.NoError(t, err)
	t.Cleanup(func() { eval.Close() })

	hub := clipboard.NewHub(clipboard.Config{}, nil)
	t.Cleanup(hub.Close)

	metrics := monitoring.NewMetrics()
	ws := workspace.NewManager(workspace.Config{MaxInstances: 4}, sandbox.Options{
		Evaluator: eval,
		Clipboard: hub,
		Bindings:  evaluator.DefaultBindings(),
	}, catalog, nil).WithMetrics(metrics).OnComplete(func(c workspace.Completion) {
		_, err := store.RecordAttempt(context.Background(), storage.Attempt{
			WidgetID:    c.WidgetID.String(),
			Lesson:      c.Lesson,
			QuizID:      c.Block,
			Score:       c.Score,
			Total:       c.Total,
			Tier:        string(c.Tier),
			CompletedAt: c.CompletedAt,
		})
		assert.NoError(t, err)
	})
	t.Cleanup(ws.Close)

	registry := service.NewRegistry(nil)
	require.NoError(t, registry.Register(theme.NewProvider(flag)))
	require.NoError(t, registry.Register(widgets.NewSandboxProvider(ws)))
	require.NoError(t, registry.Register(widgets.NewQuizProvider(ws)))

	h := NewHandlers(Deps{
		Catalog:   catalog,
		Workspace: ws,
		Theme:     flag,
		Store:     store,
		Clipboard: hub,
		Registry:  registry,
		Evaluator: eval,
		Metrics:   metrics,
	})

	router := gin.New()
	h.Register(router)
	return &testEnv{router: router, store: store, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func field(t *testing.T, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	v, ok := body[key].(map[string]interface{})
	require.True(t, ok, "missing %q in %v", key, body)
	return v
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "running", body["status"])

	code, body = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "light", body["theme"])
	assert.Contains(t, body, "evaluator")
}

func TestLessonEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/lessons", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 6, body["count"])

	code, body = env.do(t, http.MethodGet, "/lessons/props", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Props", body["title"])
	assert.NotEmpty(t, body["html"])

	code, _ = env.do(t, http.MethodGet, "/lessons/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodGet, "/lessons/Not_A_Slug", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodGet, "/search?q=state", nil)
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, body["count"], float64(1))

	code, body = env.do(t, http.MethodGet, "/search?q=%20%20", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
}

func TestSandboxLifecycle(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/sandboxes", map[string]interface{}{"lesson": "state", "block": "counter"})
	require.Equal(t, http.StatusCreated, code, body)
	snap := field(t, body, "sandbox")
	assert.Equal(t, "Counter.js", snap["file_name"])
	widgetID := snap["id"].(string)
	base := "/sandboxes/" + widgetID

	code, body = env.do(t, http.MethodPut, base+"/buffer", map[string]string{"code": "return 1 + 1;"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, field(t, body, "sandbox")["modified"])

	code, body = env.do(t, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusOK, code)
	snap = field(t, body, "sandbox")
	assert.Equal(t, "2", snap["last_output"])
	assert.Nil(t, snap["last_error"])

	env.do(t, http.MethodPut, base+"/buffer", map[string]string{"code": "throw new Error('boom')"})
	code, body = env.do(t, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusOK, code)
	snap = field(t, body, "sandbox")
	assert.Nil(t, snap["last_output"])
	assert.Contains(t, snap["last_error"], "boom")

	code, body = env.do(t, http.MethodPost, base+"/copy", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, field(t, body, "sandbox")["copy_feedback_active"])
	latest, ok := env.hub.Latest()
	require.True(t, ok)
	assert.Equal(t, "throw new Error('boom')", latest.Text)
	assert.Equal(t, widgetID, latest.Source)

	code, body = env.do(t, http.MethodGet, "/clipboard/history?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = env.do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, code)
	snap = field(t, body, "sandbox")
	assert.Equal(t, false, snap["modified"])
	assert.Nil(t, snap["last_error"])

	code, _ = env.do(t, http.MethodDelete, "/quizzes/"+widgetID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSandboxMountErrors(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/sandboxes", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/sandboxes", map[string]string{"lesson": "state", "block": "missing"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodPut, "/sandboxes/sbx_unknown/buffer", map[string]string{"code": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodPut, "/sandboxes/sbx_unknown/buffer", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	for i := 0; i < 4; i++ {
		code, _ = env.do(t, http.MethodPost, "/sandboxes", map[string]string{"initial_code": "return 1;"})
		require.Equal(t, http.StatusCreated, code)
	}
	code, _ = env.do(t, http.MethodPost, "/sandboxes", map[string]string{"initial_code": "return 1;"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestQuizFlowRecordsProgress(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/quizzes", map[string]string{"lesson": "props", "block": "props-basics"})
	require.Equal(t, http.StatusCreated, code, body)
	snap := field(t, body, "quiz")
	assert.EqualValues(t, 4, snap["total"])
	base := "/quizzes/" + snap["id"].(string)

	answers := []int{1, 2, 0, 0}
	for i, choice := range answers {
		code, body = env.do(t, http.MethodPost, base+"/answer", map[string]int{"choice": choice})
		require.Equal(t, http.StatusOK, code, body)

		if i < len(answers)-1 {
			code, _ = env.do(t, http.MethodPost, base+"/submit", nil)
			assert.Equal(t, http.StatusConflict, code)

			code, _ = env.do(t, http.MethodPost, base+"/next", nil)
			require.Equal(t, http.StatusOK, code)
		}
	}

	code, body = env.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, code)
	snap = field(t, body, "quiz")
	assert.Equal(t, "results", snap["phase"])
	assert.EqualValues(t, 4, snap["score"])
	assert.Equal(t, "perfect", snap["tier"])

	code, body = env.do(t, http.MethodGet, base+"/review", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "review")

	code, body = env.do(t, http.MethodGet, "/progress?lesson=props", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = env.do(t, http.MethodGet, "/progress/summary", nil)
	require.Equal(t, http.StatusOK, code)
	summary := field(t, body, "summary")
	assert.EqualValues(t, 1, summary["attempts"])
	assert.EqualValues(t, 1, summary["perfect"])

	code, body = env.do(t, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "answering", field(t, body, "quiz")["phase"])
}

func TestQuizContractErrors(t *testing.T) {
	env := newTestEnv(t)

	bank := []map[string]interface{}{
		{"question": "2+2?", "answers": []string{"3", "4"}, "correct": 1},
		{"question": "Capital of France?", "answers": []string{"Paris", "Rome"}, "answer": "Paris"},
	}
	code, body := env.do(t, http.MethodPost, "/quizzes", map[string]interface{}{"questions": bank})
	require.Equal(t, http.StatusCreated, code, body)
	base := "/quizzes/" + field(t, body, "quiz")["id"].(string)

	code, _ = env.do(t, http.MethodPost, base+"/answer", map[string]int{"choice": 7})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, base+"/answer", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, base+"/previous", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodGet, base+"/review", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = env.do(t, http.MethodPost, "/quizzes", map[string]interface{}{"questions": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/quizzes", map[string]interface{}{"lesson": "props", "block": "props-basics", "limit": -1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestThemeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/theme", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, field(t, body, "theme")["dark"])

	code, body = env.do(t, http.MethodPost, "/theme/toggle", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, field(t, body, "theme")["dark"])

	value, found, err := env.store.GetSetting(context.Background(), theme.SettingKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", value)

	code, body = env.do(t, http.MethodPut, "/theme", map[string]bool{"dark": false})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, field(t, body, "theme")["dark"])

	code, _ = env.do(t, http.MethodPut, "/theme", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodGet, "/theme/palettes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["palettes"], 2)
}

func TestServiceEndpoints(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/services?category=widget", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["services"], 2)

	code, body = env.do(t, http.MethodPost, "/services/execute", map[string]interface{}{"tool_id": "theme.toggle"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = env.do(t, http.MethodPost, "/services/execute", map[string]interface{}{"tool_id": "nope.tool"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])

	code, _ = env.do(t, http.MethodPost, "/services/execute", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = env.do(t, http.MethodGet, "/services/discover?q=quiz", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["services"])
}

func TestMetricsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/sandboxes", map[string]string{"initial_code": "return 1;"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "learnreact_")

	code, body := env.do(t, http.MethodGet, "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, field(t, body, "widgets")["sandboxes"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", workspace.ErrNotFound), http.StatusNotFound},
		{content.ErrNotFound, http.StatusNotFound},
		{quiz.ErrNotLastQuestion, http.StatusConflict},
		{quiz.ErrInvalidChoice, http.StatusBadRequest},
		{sandbox.ErrInvalidSource, http.StatusBadRequest},
		{clipboard.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{workspace.ErrLimitReached, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
