// Package signal is the websocket adapter: it owns the transport connections
// and translates inbound events into registry and fan-out calls.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/app"
	"github.com/mfadel/linkup/internal/config"
	"github.com/mfadel/linkup/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Registry *core.Registry
	Engine   *app.Engine
	Cfg      *config.Config
}

func NewController(reg *core.Registry, engine *app.Engine, cfg *config.Config) *Controller {
	return &Controller{Registry: reg, Engine: engine, Cfg: cfg}
}

// WsConn wraps one websocket with a buffered outbound channel. TrySend never
// blocks: a full buffer drops the frame for this connection only.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the request and runs the connection lifecycle: register,
// authenticate with the credential from the query string, pump frames until
// disconnect, then unregister synchronously.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	connID := core.ConnID(uuid.NewString())
	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	ctl.Registry.Connect(connID, conn)
	log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("new WS connection")

	// Identity is attached after the transport is up; the connection stays
	// anonymous (and room actions rejected) if the credential is bad.
	if credential := c.Query("token"); credential != "" {
		if _, err := ctl.Registry.Register(ctx, connID, credential); err != nil {
			ctl.sendError(conn, "auth-failed")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, connID, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, connID, conn)
	}()
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsConn, code string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": code,
	})
}
