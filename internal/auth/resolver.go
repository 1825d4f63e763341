package auth

import (
	"context"

	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

// Resolver turns a connection-time credential into a stable identity
// (id plus display name). Used by the connection registry when a socket
// opens.
type Resolver struct {
	tokens *TokenManager
	users  *store.Store
}

func NewResolver(tokens *TokenManager, users *store.Store) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

func (r *Resolver) Resolve(ctx context.Context, credential string) (domain.Identity, error) {
	userID, err := r.tokens.Verify(credential)
	if err != nil {
		return domain.Identity{}, err
	}
	name, err := r.users.ResolveUsername(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{ID: userID, Username: name}, nil
}
