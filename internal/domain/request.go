package domain

import "time"

type RequestID string

// FriendRequest links the sending and receiving users until one of them
// resolves it (accept creates a chat, reject just deletes the row).
type FriendRequest struct {
	ID         RequestID `gorm:"primaryKey" json:"id"`
	SenderID   UserID    `gorm:"index;not null" json:"senderId"`
	ReceiverID UserID    `gorm:"index;not null" json:"receiverId"`
	CreatedAt  time.Time `json:"-"`

	Sender   *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
