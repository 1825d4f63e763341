// Package core owns the in-process connection and room state: which
// connections are live, who they belong to and which rooms they are in.
// Nothing here is durable; a restart empties everything.
package core

import (
	"context"

	"github.com/mfadel/linkup/internal/domain"
)

// Frame is a marshaled outbound event.
type Frame []byte

// ConnID identifies one transport session. Assigned by the adapter on
// upgrade, opaque to everyone else.
type ConnID string

// SignalConnection abstracts the transport endpoint of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Resolver authenticates a connection-time credential.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (domain.Identity, error)
}
