package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mfadel/linkup/internal/domain"
)

// IncrementChatCounter bumps the unread counter for (user, chat), creating
// the row on first miss. Single upsert statement so concurrent increments for
// the same pair never lose updates.
func (s *Store) IncrementChatCounter(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chat_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count": gorm.Expr("count + 1"),
		}),
	}).Create(&domain.ChatNotification{UserID: userID, ChatID: chatID, Count: 1}).Error
	if err != nil {
		return fmt.Errorf("failed to increment chat counter: %w", err)
	}
	return nil
}

func (s *Store) ResetChatCounter(ctx context.Context, userID domain.UserID, chatID domain.ChatID) error {
	err := s.db.WithContext(ctx).
		Delete(&domain.ChatNotification{}, "user_id = ? AND chat_id = ?", userID, chatID).Error
	if err != nil {
		return fmt.Errorf("failed to reset chat counter: %w", err)
	}
	return nil
}

func (s *Store) ChatCounter(ctx context.Context, userID domain.UserID, chatID domain.ChatID) (int, error) {
	var notif domain.ChatNotification
	err := s.db.WithContext(ctx).
		First(&notif, "user_id = ? AND chat_id = ?", userID, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read chat counter: %w", err)
	}
	return notif.Count, nil
}

// IncrementGroupCounter is the group-chat variant of IncrementChatCounter.
func (s *Store) IncrementGroupCounter(ctx context.Context, userID domain.UserID, groupID domain.GroupID) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count": gorm.Expr("count + 1"),
		}),
	}).Create(&domain.GroupChatNotification{UserID: userID, GroupID: groupID, Count: 1}).Error
	if err != nil {
		return fmt.Errorf("failed to increment group counter: %w", err)
	}
	return nil
}

func (s *Store) ResetGroupCounter(ctx context.Context, userID domain.UserID, groupID domain.GroupID) error {
	err := s.db.WithContext(ctx).
		Delete(&domain.GroupChatNotification{}, "user_id = ? AND group_id = ?", userID, groupID).Error
	if err != nil {
		return fmt.Errorf("failed to reset group counter: %w", err)
	}
	return nil
}

func (s *Store) GroupCounter(ctx context.Context, userID domain.UserID, groupID domain.GroupID) (int, error) {
	var notif domain.GroupChatNotification
	err := s.db.WithContext(ctx).
		First(&notif, "user_id = ? AND group_id = ?", userID, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read group counter: %w", err)
	}
	return notif.Count, nil
}
