package domain

// ChatNotification is the unread counter for one (user, chat) pair. A row
// exists only after at least one missed delivery; opening the chat removes it.
type ChatNotification struct {
	UserID UserID `gorm:"primaryKey" json:"userId"`
	ChatID ChatID `gorm:"primaryKey" json:"chatId"`
	Count  int    `gorm:"not null;default:0" json:"count"`
}

// GroupChatNotification is the unread counter for one (user, group) pair.
type GroupChatNotification struct {
	UserID  UserID  `gorm:"primaryKey" json:"userId"`
	GroupID GroupID `gorm:"primaryKey" json:"groupId"`
	Count   int     `gorm:"not null;default:0" json:"count"`
}
