package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/core"
	"github.com/mfadel/linkup/internal/domain"
)

// Outbound event payloads. Every frame carries a "type" discriminator the
// client dispatches on.

type ReceiveMessage struct {
	Type     string        `json:"type"`
	Text     string        `json:"text"`
	SenderID domain.UserID `json:"senderId"`
}

type ReceiveGroupMessage struct {
	Type       string         `json:"type"`
	GroupID    domain.GroupID `json:"groupId"`
	Text       string         `json:"text"`
	SenderID   domain.UserID  `json:"senderId"`
	SenderName string         `json:"senderName"`
	SenderRole domain.Role    `json:"senderRole"`
}

type ChatsNotification struct {
	Type   string        `json:"type"`
	ChatID domain.ChatID `json:"conversationId"`
}

type GroupChatsNotification struct {
	Type    string         `json:"type"`
	GroupID domain.GroupID `json:"groupId"`
}

func mustFrame(v any) core.Frame {
	b, err := json.Marshal(v)
	if err != nil {
		// Payload structs only hold strings; this cannot fail at runtime.
		log.Error().Err(err).Str("module", "app.events").Msg("marshal event")
		return nil
	}
	return core.Frame(b)
}
