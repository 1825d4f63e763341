package domain

import "strings"

// RoomKey names a broadcast group. Conversation rooms use the chat or group
// chat id as the key; personal rooms use the "personal:" prefix and exist one
// per user for out-of-band notification pushes.
type RoomKey string

const personalPrefix = "personal:"

func PersonalRoom(id UserID) RoomKey {
	return RoomKey(personalPrefix + string(id))
}

func (k RoomKey) IsPersonal() bool {
	return strings.HasPrefix(string(k), personalPrefix)
}
