package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var ErrConnClosed = errors.New("connection closed")

// conn serializes writes to one websocket and keeps it alive with pings.
type conn struct {
	ws     *websocket.Conn
	cfg    Config
	logger *slog.Logger

	writeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

func newConn(ws *websocket.Conn, cfg Config, logger *slog.Logger) *conn {
	c := &conn{
		ws:     ws,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}

	ws.SetReadLimit(cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})
	return c
}

// send writes one message with a write deadline.
func (c *conn) send(msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrConnClosed
	}

	if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// read blocks for the next client message.
func (c *conn) read() (ClientMessage, error) {
	var msg ClientMessage
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, &decodeError{err: err}
	}
	return msg, nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode message: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// pingLoop sends keepalive pings until ctx is done or the connection closes.
func (c *conn) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			if c.closed {
				c.writeMu.Unlock()
				return
			}
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			err := c.ws.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// close sends a close frame and releases the socket. Safe to call twice.
func (c *conn) close(code int, reason string) {
	c.writeMu.Lock()
	if c.closed {
		c.writeMu.Unlock()
		return
	}
	c.closed = true
	deadline := time.Now().Add(c.cfg.WriteTimeout)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	c.writeMu.Unlock()

	close(c.done)
	_ = c.ws.Close()
}
