package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"timecircuits/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

// wsEnvelope wraps every message sent to a client.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is what a client may send: {"type":"keypad","digits":"...","enter":true}.
type wsCommand struct {
	Type   string `json:"type"`
	Digits string `json:"digits"`
	Enter  bool   `json:"enter"`
}

// The panel is served to local dashboards on any origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// panelStream serializes writes to one websocket client.
type panelStream struct {
	h    *Handler
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *panelStream) write(env wsEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}

func (s *panelStream) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// sendState writes the current snapshot. Before the first snapshot is
// published the client gets a "not_ready" message and the stream goes on.
func (s *panelStream) sendState(ctx context.Context) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if errors.Is(err, service.ErrNotReady) {
		return s.write(wsEnvelope{Type: "not_ready", Error: errNotReady})
	}
	if err != nil {
		if s.h.log != nil {
			s.h.log.Errorw("ws_get_state_failed", "err", err)
		}
		return err
	}
	return s.write(wsEnvelope{Type: "state", Data: st})
}

// readCommands handles client commands until the connection closes.
func (s *panelStream) readCommands(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if s.h.log != nil {
				s.h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Type != "keypad" {
			_ = s.write(wsEnvelope{Type: "error", Error: "expected {\"type\":\"keypad\",\"digits\":...}"})
			continue
		}
		if err := s.h.services.Panel.EnterSequence(ctx, cmd.Digits, cmd.Enter); err != nil {
			_ = s.write(wsEnvelope{Type: "error", Error: err.Error()})
			continue
		}
		_ = s.write(wsEnvelope{Type: "ack", Data: cmd})
	}
}

func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := c.Request.Context()
	stream := &panelStream{h: h, conn: conn}
	if err := stream.sendState(ctx); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	done := make(chan struct{})
	go stream.readCommands(ctx, done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pinger := time.NewTicker(pingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-pinger.C:
			if err := stream.ping(); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := stream.sendState(ctx); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000. Out-of-range or
// malformed values fall back to one second.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}
