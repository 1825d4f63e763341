package domain

import "time"

type ChatID string

// Chat is a direct conversation between exactly two users.
type Chat struct {
	ID        ChatID    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`

	Users []*User `gorm:"many2many:chat_users" json:"users,omitempty"`
}

type MessageID string

type Message struct {
	ID        MessageID `gorm:"primaryKey" json:"id"`
	ChatID    ChatID    `gorm:"index;not null" json:"chatId"`
	UserID    UserID    `gorm:"index;not null" json:"userId"`
	Text      string    `gorm:"not null" json:"text"`
	Time      time.Time `json:"time"`
}
