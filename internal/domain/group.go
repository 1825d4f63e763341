package domain

import "time"

type GroupID string

// Role of a user within a group chat.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type GroupChat struct {
	ID        GroupID   `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	OwnerID   UserID    `gorm:"index;not null" json:"ownerId"`
	CreatedAt time.Time `json:"-"`

	Owner   *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Admins  []*User `gorm:"many2many:group_chat_admins" json:"admins,omitempty"`
	Members []*User `gorm:"many2many:group_chat_members" json:"members,omitempty"`
}

type GroupMessage struct {
	ID      MessageID `gorm:"primaryKey" json:"id"`
	GroupID GroupID   `gorm:"index;not null" json:"groupId"`
	UserID  UserID    `gorm:"index;not null" json:"userId"`
	Text    string    `gorm:"not null" json:"text"`
	Time    time.Time `json:"time"`
}
