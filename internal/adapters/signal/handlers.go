package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/core"
	"github.com/mfadel/linkup/internal/domain"
)

func (ctl *Controller) handleJoin(connID core.ConnID, c *WsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		ctl.sendError(c, "bad-payload")
		return
	}

	if err := ctl.Registry.JoinConversation(connID, domain.RoomKey(p.Room)); err != nil {
		switch {
		case errors.Is(err, core.ErrNotAuthenticated):
			ctl.sendError(c, "not-authenticated")
		case errors.Is(err, core.ErrInvalidRoomKey):
			ctl.sendError(c, "invalid-room")
		default:
			ctl.sendError(c, "join-failed")
		}
		return
	}
	ctl.sendJSON(c, map[string]any{"type": "joined", "room": p.Room})
}

func (ctl *Controller) handleSendMessage(ctx context.Context, connID core.ConnID, c *WsConn, data []byte) {
	var p struct {
		Type           string `json:"type"`
		Room           string `json:"room"`
		ConversationID string `json:"conversationId"`
		RecipientID    string `json:"recipientId"`
		Text           string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || p.Text == "" {
		ctl.sendError(c, "bad-payload")
		return
	}

	err := ctl.Engine.SendDirect(ctx, connID,
		domain.RoomKey(p.Room),
		domain.ChatID(p.ConversationID),
		domain.UserID(p.RecipientID),
		p.Text,
	)
	if err != nil {
		ctl.replySendErr(c, err)
		return
	}
	ctl.sendJSON(c, map[string]any{"type": "ack"})
}

func (ctl *Controller) handleSendGroupMessage(ctx context.Context, connID core.ConnID, c *WsConn, data []byte) {
	var p struct {
		Type       string `json:"type"`
		Room       string `json:"room"`
		GroupID    string `json:"groupId"`
		SenderRole string `json:"senderRole"`
		Text       string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || p.Text == "" {
		ctl.sendError(c, "bad-payload")
		return
	}

	err := ctl.Engine.SendGroup(ctx, connID,
		domain.RoomKey(p.Room),
		domain.GroupID(p.GroupID),
		domain.Role(p.SenderRole),
		p.Text,
	)
	if err != nil {
		ctl.replySendErr(c, err)
		return
	}
	ctl.sendJSON(c, map[string]any{"type": "ack"})
}

// replySendErr maps an engine failure to the error acknowledgment the sender
// sees. Live deliveries that already happened stay delivered.
func (ctl *Controller) replySendErr(c *WsConn, err error) {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		ctl.sendError(c, "not-authenticated")
	case errors.Is(err, core.ErrNotInRoom):
		ctl.sendError(c, "not-in-room")
	default:
		log.Error().Err(err).Str("module", "signal").Msg("send failed")
		ctl.sendError(c, "delivery-not-persisted")
	}
}
