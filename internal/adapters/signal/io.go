package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, connID core.ConnID, c *WsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump consumes inbound frames until the transport drops. Unregistering
// happens here, before the pump returns, so the connection is gone from
// every presence view the moment the disconnect is observed.
func (ctl *Controller) readPump(ctx context.Context, connID core.ConnID, c *WsConn) {
	defer func() {
		ctl.Registry.Unregister(connID)
		c.Close()
		log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("readPump read error")
				}
				return
			}
			ctl.dispatch(ctx, connID, c, data)
		}
	}
}

// dispatch routes one inbound frame by its "type" discriminator. A handler
// failure is reported to this connection only; it never tears down the
// registry.
func (ctl *Controller) dispatch(ctx context.Context, connID core.ConnID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad-payload")
		return
	}

	switch env.Type {
	case "join-room":
		ctl.handleJoin(connID, c, data)
	case "send-message":
		ctl.handleSendMessage(ctx, connID, c, data)
	case "send-group-message":
		ctl.handleSendGroupMessage(ctx, connID, c, data)
	case "ping":
		ctl.sendJSON(c, map[string]any{"type": "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "unknown-event")
	}
}
