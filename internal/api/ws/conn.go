package ws

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LearnReact/internal/infrastructure/monitoring"
)

// client is one connection. gorilla allows a single concurrent writer,
// so every outbound frame goes through send and writeLoop.
type client struct {
	id      string
	ws      *websocket.Conn
	logger  *zap.Logger
	metrics *monitoring.Metrics

	send chan []byte

	mu     sync.Mutex
	subs   map[string]func() // Protected by mu
	closed bool
}

func newClient(connID string, ws *websocket.Conn, logger *zap.Logger, metrics *monitoring.Metrics) *client {
	return &client{
		id:      connID,
		ws:      ws,
		logger:  logger.With(zap.String("conn_id", connID)),
		metrics: metrics,
		send:    make(chan []byte, sendBuffer),
		subs:    make(map[string]func()),
	}
}

// push queues a message without blocking. A client that cannot keep up
// loses frames rather than stalling widget callbacks.
func (c *client) push(msg Message) {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := sonic.Marshal(msg)
	if err != nil {
		c.logger.Error("encode websocket message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
		c.metrics.RecordWSMessage("out", msg.Type)
	default:
		c.logger.Warn("websocket send buffer full, dropping message", zap.String("type", msg.Type))
	}
}

func (c *client) addSub(key string, unsub func()) {
	if unsub == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsub()
		return
	}
	prev := c.subs[key]
	c.subs[key] = unsub
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (c *client) dropSub(key string) {
	c.mu.Lock()
	unsub := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *client) watching(widgetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[watchKey(widgetID)]
	return ok
}

func (c *client) readLoop(handle func([]byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		handle(data)
	}
}

func (c *client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.ws.Close()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// close drops every subscription and stops the writer.
func (c *client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	close(c.send)
	c.mu.Unlock()

	for _, unsub := range subs {
		unsub()
	}
}
