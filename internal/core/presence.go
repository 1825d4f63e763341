package core

import (
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
)

// MemberConn is one live, authenticated connection inside a snapshot.
type MemberConn struct {
	ID   ConnID
	User domain.UserID
	Conn SignalConnection
}

// Snapshot is a consistent view of one room's membership, taken under the
// table lock. The fan-out engine takes exactly one snapshot per send and
// uses it for both the live broadcast and the missed-delivery decision, so a
// peer disconnecting mid-send is still treated as present for that message.
type Snapshot struct {
	Room    domain.RoomKey
	Members []MemberConn
	users   map[domain.UserID]struct{}
}

// Snapshot captures the distinct identities and connections currently in the
// room. Anonymous connections never appear in a snapshot.
func (r *Registry) Snapshot(key domain.RoomKey) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{
		Room:  key,
		users: make(map[domain.UserID]struct{}),
	}
	for id := range r.rooms[key] {
		state, ok := r.conns[id]
		if !ok || state.identity == nil {
			continue
		}
		snap.Members = append(snap.Members, MemberConn{
			ID:   id,
			User: state.identity.ID,
			Conn: state.conn,
		})
		snap.users[state.identity.ID] = struct{}{}
	}
	return snap
}

// Valid reports whether every connection appears at most once. False means
// the membership table is corrupt.
func (s Snapshot) Valid() bool {
	seen := make(map[ConnID]struct{}, len(s.Members))
	for _, m := range s.Members {
		if _, dup := seen[m.ID]; dup {
			return false
		}
		seen[m.ID] = struct{}{}
	}
	return true
}

// Present reports whether the user had at least one live connection in the
// room when the snapshot was taken.
func (s Snapshot) Present(user domain.UserID) bool {
	_, ok := s.users[user]
	return ok
}

// Broadcast delivers the frame to every member except the sender's own
// connections. Best-effort: a full send buffer drops the frame for that
// connection only.
func (s Snapshot) Broadcast(from domain.UserID, frame Frame) int {
	sent := 0
	for _, m := range s.Members {
		if m.User == from {
			continue
		}
		if err := m.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "core.presence").Str("conn", string(m.ID)).Msg("dropped frame")
			continue
		}
		sent++
	}
	return sent
}

// PushToUser sends the frame to every connection in the user's personal
// room, reaching them whatever conversation they are currently viewing.
func (r *Registry) PushToUser(user domain.UserID, frame Frame) int {
	snap := r.Snapshot(domain.PersonalRoom(user))
	sent := 0
	for _, m := range snap.Members {
		if err := m.Conn.TrySend(frame); err != nil {
			continue
		}
		sent++
	}
	return sent
}
