package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
)

type connState struct {
	conn     SignalConnection
	identity *domain.Identity // nil while anonymous
	rooms    map[domain.RoomKey]struct{}
}

// Registry is the process-wide connection and room table. One mutex guards
// both maps so that room-membership mutations and presence snapshots are
// serialized: no snapshot can observe a connection mid-swap.
type Registry struct {
	mu       sync.RWMutex
	resolver Resolver
	conns    map[ConnID]*connState
	rooms    map[domain.RoomKey]map[ConnID]struct{}
}

func NewRegistry(resolver Resolver) *Registry {
	return &Registry{
		resolver: resolver,
		conns:    make(map[ConnID]*connState),
		rooms:    make(map[domain.RoomKey]map[ConnID]struct{}),
	}
}

// Connect records a fresh, still-anonymous connection.
func (r *Registry) Connect(id ConnID, conn SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connState{
		conn:  conn,
		rooms: make(map[domain.RoomKey]struct{}),
	}
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Msg("connection opened")
}

// Register resolves the credential and attaches the identity to the
// connection, auto-joining it to its personal room. On failure the
// connection stays anonymous and every conversation-room action keeps being
// rejected.
func (r *Registry) Register(ctx context.Context, id ConnID, credential string) (domain.Identity, error) {
	// Credential verification awaits the auth collaborator; never hold the
	// table lock across it.
	identity, err := r.resolver.Resolve(ctx, credential)
	if err != nil {
		log.Warn().Err(err).Str("module", "core.registry").Str("conn", string(id)).Msg("auth failed")
		return domain.Identity{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.conns[id]
	if !ok {
		// Disconnected while authenticating.
		return domain.Identity{}, ErrUnknownConnection
	}
	state.identity = &identity
	personal := domain.PersonalRoom(identity.ID)
	r.joinLocked(id, personal)
	state.rooms[personal] = struct{}{}
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("user", string(identity.ID)).Msg("connection authenticated")
	return identity, nil
}

func (r *Registry) IdentityOf(id ConnID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.conns[id]
	if !ok || state.identity == nil {
		return domain.Identity{}, false
	}
	return *state.identity, true
}

// Unregister drops the connection and every room membership it holds, in one
// critical section. After it returns no presence snapshot reports the
// connection again.
func (r *Registry) Unregister(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.conns[id]
	if !ok {
		return
	}
	for key := range state.rooms {
		r.leaveLocked(id, key)
	}
	delete(r.conns, id)
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Msg("connection closed")
}

func (r *Registry) joinLocked(id ConnID, key domain.RoomKey) {
	members, ok := r.rooms[key]
	if !ok {
		members = make(map[ConnID]struct{})
		r.rooms[key] = members
	}
	members[id] = struct{}{}
}

func (r *Registry) leaveLocked(id ConnID, key domain.RoomKey) {
	members, ok := r.rooms[key]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, key)
	}
}
