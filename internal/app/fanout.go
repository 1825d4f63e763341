// Package app coordinates the live fan-out of messages: broadcast to present
// peers, durable unread counters for absent ones.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/core"
	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

type Engine struct {
	Registry *core.Registry
	Store    *store.Store
	Ledger   *Ledger
}

func NewEngine(reg *core.Registry, s *store.Store) *Engine {
	return &Engine{Registry: reg, Store: s, Ledger: NewLedger(s)}
}

// SendDirect runs the direct-message flow: validate sender membership, one
// presence snapshot, live broadcast, notification for an absent recipient,
// then unconditional persistence. A persistence failure is returned to the
// sender but never rolls back the broadcast already delivered.
func (e *Engine) SendDirect(ctx context.Context, connID core.ConnID, key domain.RoomKey, chatID domain.ChatID, recipientID domain.UserID, text string) error {
	sender, ok := e.Registry.IdentityOf(connID)
	if !ok {
		return core.ErrNotAuthenticated
	}
	if !e.Registry.InRoom(connID, key) {
		return core.ErrNotInRoom
	}

	// One snapshot drives both the broadcast and the absence decision, so a
	// peer that disconnects mid-send still counts as present for this
	// message.
	snap := e.Registry.Snapshot(key)
	if !snap.Valid() {
		log.Error().Str("module", "app.fanout").Str("room", string(key)).Msg("presence race detected")
		return core.ErrPresenceRace
	}

	frame := mustFrame(ReceiveMessage{
		Type:     "receive-message",
		Text:     text,
		SenderID: sender.ID,
	})
	sent := snap.Broadcast(sender.ID, frame)

	recipientPresent := snap.Present(recipientID)
	if !recipientPresent {
		e.Registry.PushToUser(recipientID, mustFrame(ChatsNotification{
			Type:   "chats-notification",
			ChatID: chatID,
		}))
		e.Ledger.RecordMissedChat(ctx, recipientID, chatID)
	}

	log.Debug().Str("module", "app.fanout").Str("chat", string(chatID)).Int("sent_to", sent).Bool("recipient_present", recipientPresent).Msg("direct message fanned out")

	if _, err := e.Store.CreateMessage(ctx, chatID, sender.ID, text, time.Now()); err != nil {
		return fmt.Errorf("message delivered but not persisted: %w", err)
	}
	return nil
}

// SendGroup runs the group flow: broadcast to every other present member,
// then one notification push and one counter increment per absent group
// member, whatever their role.
func (e *Engine) SendGroup(ctx context.Context, connID core.ConnID, key domain.RoomKey, groupID domain.GroupID, senderRole domain.Role, text string) error {
	sender, ok := e.Registry.IdentityOf(connID)
	if !ok {
		return core.ErrNotAuthenticated
	}
	if !e.Registry.InRoom(connID, key) {
		return core.ErrNotInRoom
	}

	snap := e.Registry.Snapshot(key)
	if !snap.Valid() {
		log.Error().Str("module", "app.fanout").Str("room", string(key)).Msg("presence race detected")
		return core.ErrPresenceRace
	}

	frame := mustFrame(ReceiveGroupMessage{
		Type:       "receive-group-message",
		GroupID:    groupID,
		Text:       text,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		SenderRole: senderRole,
	})
	sent := snap.Broadcast(sender.ID, frame)

	memberIDs, err := e.Store.GroupMemberIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to resolve group members: %w", err)
	}
	notified := 0
	for _, member := range memberIDs {
		if member == sender.ID || snap.Present(member) {
			continue
		}
		e.Registry.PushToUser(member, mustFrame(GroupChatsNotification{
			Type:    "group-chats-notification",
			GroupID: groupID,
		}))
		e.Ledger.RecordMissedGroup(ctx, member, groupID)
		notified++
	}

	log.Debug().Str("module", "app.fanout").Str("group", string(groupID)).Int("sent_to", sent).Int("notified", notified).Msg("group message fanned out")

	if _, err := e.Store.CreateGroupMessage(ctx, groupID, sender.ID, text, time.Now()); err != nil {
		return fmt.Errorf("message delivered but not persisted: %w", err)
	}
	return nil
}
