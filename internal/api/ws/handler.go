package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/domain/quiz"
	"github.com/GriffinCanCode/LearnReact/internal/domain/sandbox"
	"github.com/GriffinCanCode/LearnReact/internal/domain/workspace"
	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LearnReact/internal/providers/clipboard"
	"github.com/GriffinCanCode/LearnReact/internal/providers/theme"
	"github.com/GriffinCanCode/LearnReact/internal/shared/id"
	"github.com/GriffinCanCode/LearnReact/internal/shared/types"
)

// Outbound message types.
const (
	TypeSnapshot  = "snapshot"
	TypeReview    = "review"
	TypeClipboard = "clipboard"
	TypeTheme     = "theme"
	TypePong      = "pong"
	TypeError     = "error"
	TypeUnwatched = "unwatched"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 256 * 1024
	sendBuffer     = 64
	opTimeout      = 30 * time.Second
)

// Message is an outbound frame.
type Message struct {
	Type      string      `json:"type"`
	WidgetID  string      `json:"widget_id,omitempty"`
	Kind      string      `json:"kind,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Config configures the handler.
type Config struct {
	// AllowedOrigins limits browser origins; empty or "*" allows any.
	AllowedOrigins []string
}

// Handler manages WebSocket connections
type Handler struct {
	workspace *workspace.Manager
	clipboard *clipboard.Hub
	theme     *theme.Flag
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	upgrader  websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(cfg Config, ws *workspace.Manager, hub *clipboard.Hub, flag *theme.Flag, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		workspace: ws,
		clipboard: hub,
		theme:     flag,
		logger:    logger,
		metrics:   metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newClient(uuid.NewString(), raw, h.logger, h.metrics)
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go conn.writeLoop(ctx)

	conn.addSub("clipboard", h.clipboard.Subscribe(func(e clipboard.Entry) {
		conn.push(Message{Type: TypeClipboard, WidgetID: e.Source, Data: e})
	}))
	conn.addSub("theme", h.theme.Subscribe(func(s theme.State) {
		conn.push(Message{Type: TypeTheme, Data: s})
	}))
	conn.push(Message{Type: TypeTheme, Data: h.theme.Current()})

	h.logger.Info("websocket connected", zap.String("conn_id", conn.id))
	conn.readLoop(func(data []byte) {
		h.dispatch(ctx, conn, data)
	})
	conn.close()
	h.logger.Info("websocket disconnected", zap.String("conn_id", conn.id))
}

func (h *Handler) dispatch(ctx context.Context, conn *client, data []byte) {
	var msg types.WSMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		conn.push(errorMessage("", errors.New("invalid message")))
		return
	}
	h.metrics.RecordWSMessage("in", msg.Type)

	switch msg.Type {
	case "ping":
		conn.push(Message{Type: TypePong})
	case "theme":
		h.setTheme(ctx, conn, msg)
	case "watch":
		h.watch(conn, msg.WidgetID)
	case "unwatch":
		conn.dropSub(watchKey(msg.WidgetID))
		conn.push(Message{Type: TypeUnwatched, WidgetID: msg.WidgetID})
	case "edit", "run", "reset", "copy":
		h.sandboxOp(ctx, conn, msg)
	case "select", "next", "previous", "submit", "restart", "review":
		h.quizOp(conn, msg)
	default:
		conn.push(errorMessage(msg.WidgetID, errors.New("unknown message type")))
	}
}

func (h *Handler) setTheme(ctx context.Context, conn *client, msg types.WSMessage) {
	var err error
	if msg.Dark != nil {
		_, err = h.theme.Set(ctx, *msg.Dark)
	} else {
		_, err = h.theme.Toggle(ctx)
	}
	if err != nil {
		conn.push(errorMessage("", err))
	}
}

// watch streams every state change of a widget to this connection.
func (h *Handler) watch(conn *client, widgetID string) {
	wid := id.WidgetID(widgetID)
	kind, err := h.workspace.Kind(wid)
	if err != nil {
		conn.push(errorMessage(widgetID, err))
		return
	}

	var unsub func()
	switch kind {
	case workspace.KindSandbox:
		w, err := h.workspace.Sandbox(wid)
		if err != nil {
			conn.push(errorMessage(widgetID, err))
			return
		}
		unsub = w.Watch(func(s sandbox.Snapshot) {
			conn.push(snapshotMessage(s.ID, kind, s))
		})
		conn.push(snapshotMessage(wid, kind, w.Snapshot()))
	case workspace.KindQuiz:
		w, err := h.workspace.Quiz(wid)
		if err != nil {
			conn.push(errorMessage(widgetID, err))
			return
		}
		unsub = w.Watch(func(s quiz.Snapshot) {
			conn.push(snapshotMessage(s.ID, kind, s))
		})
		conn.push(snapshotMessage(wid, kind, w.Snapshot()))
	}
	conn.addSub(watchKey(widgetID), unsub)
}

func (h *Handler) sandboxOp(ctx context.Context, conn *client, msg types.WSMessage) {
	w, err := h.workspace.Sandbox(id.WidgetID(msg.WidgetID))
	if err != nil {
		conn.push(errorMessage(msg.WidgetID, err))
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var snap sandbox.Snapshot
	switch msg.Type {
	case "edit":
		snap, err = w.OnEdit(msg.Code)
	case "run":
		snap, err = w.Run(opCtx)
	case "reset":
		snap, err = w.Reset()
	case "copy":
		snap, err = w.Copy(clipboard.WithSource(opCtx, msg.WidgetID))
	}
	if err != nil {
		conn.push(errorMessage(msg.WidgetID, err))
		return
	}
	if !conn.watching(msg.WidgetID) {
		conn.push(snapshotMessage(snap.ID, workspace.KindSandbox, snap))
	}
}

func (h *Handler) quizOp(conn *client, msg types.WSMessage) {
	w, err := h.workspace.Quiz(id.WidgetID(msg.WidgetID))
	if err != nil {
		conn.push(errorMessage(msg.WidgetID, err))
		return
	}

	var snap quiz.Snapshot
	switch msg.Type {
	case "select":
		if msg.Choice == nil {
			conn.push(errorMessage(msg.WidgetID, errors.New("choice is required")))
			return
		}
		snap, err = w.SelectAnswer(*msg.Choice)
	case "next":
		snap, err = w.GoNext()
	case "previous":
		snap, err = w.GoPrevious()
	case "submit":
		snap, err = w.Submit()
	case "restart":
		snap, err = w.Restart()
	case "review":
		review, rerr := w.Review()
		if rerr != nil {
			conn.push(errorMessage(msg.WidgetID, rerr))
			return
		}
		conn.push(Message{Type: TypeReview, WidgetID: msg.WidgetID, Kind: workspace.KindQuiz, Data: review})
		return
	}
	if err != nil {
		conn.push(errorMessage(msg.WidgetID, err))
		return
	}
	if !conn.watching(msg.WidgetID) {
		conn.push(snapshotMessage(snap.ID, workspace.KindQuiz, snap))
	}
}

func watchKey(widgetID string) string {
	return "watch:" + widgetID
}

func snapshotMessage(widgetID id.WidgetID, kind string, snap interface{}) Message {
	return Message{Type: TypeSnapshot, WidgetID: widgetID.String(), Kind: kind, Data: snap}
}

func errorMessage(widgetID string, err error) Message {
	return Message{Type: TypeError, WidgetID: widgetID, Error: err.Error()}
}
