package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
)

// Counters is the slice of the store the ledger writes through.
type Counters interface {
	IncrementChatCounter(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error
	IncrementGroupCounter(ctx context.Context, userID domain.UserID, groupID domain.GroupID) error
	ResetChatCounter(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error
}

// Ledger records missed deliveries as durable unread counters. Failed writes
// are retried once; a second failure is logged and accepted as an
// under-counted badge rather than failing the send.
type Ledger struct {
	store Counters
}

func NewLedger(s Counters) *Ledger {
	return &Ledger{store: s}
}

func (l *Ledger) RecordMissedChat(ctx context.Context, recipient domain.UserID, chatID domain.ChatID) {
	err := l.store.IncrementChatCounter(ctx, recipient, chatID)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("module", "app.ledger").Str("user", string(recipient)).Str("chat", string(chatID)).Msg("counter increment failed, retrying")
	if err := l.store.IncrementChatCounter(ctx, recipient, chatID); err != nil {
		log.Error().Err(err).Str("module", "app.ledger").Str("user", string(recipient)).Str("chat", string(chatID)).Msg("counter increment lost")
	}
}

func (l *Ledger) RecordMissedGroup(ctx context.Context, recipient domain.UserID, groupID domain.GroupID) {
	err := l.store.IncrementGroupCounter(ctx, recipient, groupID)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("module", "app.ledger").Str("user", string(recipient)).Str("group", string(groupID)).Msg("counter increment failed, retrying")
	if err := l.store.IncrementGroupCounter(ctx, recipient, groupID); err != nil {
		log.Error().Err(err).Str("module", "app.ledger").Str("user", string(recipient)).Str("group", string(groupID)).Msg("counter increment lost")
	}
}

// Reset clears the counter for an opened conversation. Exposed for the CRUD
// routes; the fan-out path never calls it.
func (l *Ledger) Reset(ctx context.Context, recipient domain.UserID, chatID domain.ChatID) error {
	return l.store.ResetChatCounter(ctx, recipient, chatID)
}
