// Package store is the persistence layer: gorm over sqlite. All durable
// state (users, chats, messages, notification counters) goes through here.
package store

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfadel/linkup/internal/domain"
)

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=1&_journal_mode=WAL"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an already-open gorm handle; used by tests with :memory:.
func New(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Chat{},
		&domain.Message{},
		&domain.FriendRequest{},
		&domain.GroupChat{},
		&domain.GroupMessage{},
		&domain.ChatNotification{},
		&domain.GroupChatNotification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
