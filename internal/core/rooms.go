package core

import (
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
)

// JoinConversation swaps the connection's conversation room: it leaves every
// room it holds except its personal room, then joins key. The whole swap
// happens under the table lock, so a concurrent snapshot sees the connection
// in exactly zero or one conversation room, never two.
//
// The room key is not validated against the persistence layer here; callers
// only hand a key to a client after their own authorization check. Personal
// keys are never accepted: their format is guessable, and a connection that
// joined someone else's personal room would read that user's notification
// pushes.
func (r *Registry) JoinConversation(id ConnID, key domain.RoomKey) error {
	if key.IsPersonal() {
		return ErrInvalidRoomKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.conns[id]
	if !ok {
		return ErrUnknownConnection
	}
	if state.identity == nil {
		return ErrNotAuthenticated
	}
	for held := range state.rooms {
		if held.IsPersonal() {
			continue
		}
		r.leaveLocked(id, held)
		delete(state.rooms, held)
	}
	r.joinLocked(id, key)
	state.rooms[key] = struct{}{}
	log.Info().Str("module", "core.rooms").Str("conn", string(id)).Str("room", string(key)).Msg("joined conversation")
	return nil
}

func (r *Registry) MembersOf(key domain.RoomKey) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnID, 0, len(r.rooms[key]))
	for id := range r.rooms[key] {
		out = append(out, id)
	}
	return out
}

// InRoom reports whether the connection currently holds key.
func (r *Registry) InRoom(id ConnID, key domain.RoomKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.conns[id]
	if !ok {
		return false
	}
	_, in := state.rooms[key]
	return in
}

// ConversationOf returns the connection's current conversation room, if any.
func (r *Registry) ConversationOf(id ConnID) (domain.RoomKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.conns[id]
	if !ok {
		return "", false
	}
	for held := range state.rooms {
		if !held.IsPersonal() {
			return held, true
		}
	}
	return "", false
}
