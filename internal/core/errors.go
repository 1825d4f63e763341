package core

import "errors"

var (
	// ErrNotAuthenticated rejects room actions from a connection whose
	// identity has not been resolved yet.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotInRoom rejects a send into a room the sender is not a member of.
	ErrNotInRoom = errors.New("not in room")
	// ErrUnknownConnection means the connection id is not registered (stale
	// or already disconnected).
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrInvalidRoomKey rejects a personal-room key offered as a
	// conversation key. Personal rooms are joined only by Register, for the
	// connection's own identity.
	ErrInvalidRoomKey = errors.New("invalid room key")
	// ErrPresenceRace means a snapshot double-counted a connection. That is
	// a registry bug, not a client error; callers log and abort.
	ErrPresenceRace = errors.New("presence race detected")
)
