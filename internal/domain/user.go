// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

type User struct {
	ID        UserID    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"-"`

	Profile Profile `gorm:"foreignKey:UserID" json:"-"`
}

type Profile struct {
	ID                 uint   `gorm:"primaryKey" json:"-"`
	UserID             UserID `gorm:"uniqueIndex;not null" json:"-"`
	Image              string `json:"image"`
	Bio                string `json:"bio"`
	RelationshipStatus string `json:"relationshipStatus"`
}

func NewUser(username, passwordHash, firstName, lastName string) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &User{
		ID:        UserID(uuid.NewString()),
		Username:  username,
		Password:  passwordHash,
		FirstName: firstName,
		LastName:  lastName,
		Profile:   Profile{},
	}, nil
}

// Identity is the resolved (authenticated) view of a connection's user.
type Identity struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}
