package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mfadel/linkup/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already taken")
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrUserExists
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// ResolveUsername returns the display name for a user id.
func (s *Store) ResolveUsername(ctx context.Context, id domain.UserID) (string, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Select("username").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve username: %w", err)
	}
	return user.Username, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id domain.UserID, username, bio, relationshipStatus string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.User{}).Where("id = ?", id).
			Update("username", username).Error; err != nil {
			return fmt.Errorf("failed to update username: %w", err)
		}
		if err := tx.Model(&domain.Profile{}).Where("user_id = ?", id).
			Updates(map[string]any{
				"bio":                 bio,
				"relationship_status": relationshipStatus,
			}).Error; err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.UserID, status string) error {
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// SearchPeople finds users matching the name fragment, excluding the caller,
// existing chat partners and users with a pending request either way.
func (s *Store) SearchPeople(ctx context.Context, callerID domain.UserID, name string) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.WithContext(ctx).Preload("Profile").
		Where("username LIKE ?", "%"+name+"%").
		Where("id <> ?", callerID).
		Where("id NOT IN (?)", s.db.Table("chat_users").
			Select("user_id").
			Where("chat_id IN (?)", s.db.Table("chat_users").
				Select("chat_id").Where("user_id = ?", callerID))).
		Where("id NOT IN (?)", s.db.Table("friend_requests").
			Select("receiver_id").Where("sender_id = ?", callerID)).
		Where("id NOT IN (?)", s.db.Table("friend_requests").
			Select("sender_id").Where("receiver_id = ?", callerID)).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	return users, nil
}
