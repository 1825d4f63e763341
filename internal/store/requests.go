package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfadel/linkup/internal/domain"
)

func (s *Store) SentRequests(ctx context.Context, userID domain.UserID) ([]*domain.FriendRequest, error) {
	var reqs []*domain.FriendRequest
	err := s.db.WithContext(ctx).
		Preload("Receiver").Preload("Receiver.Profile").
		Where("sender_id = ?", userID).Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return reqs, nil
}

func (s *Store) ReceivedRequests(ctx context.Context, userID domain.UserID) ([]*domain.FriendRequest, error) {
	var reqs []*domain.FriendRequest
	err := s.db.WithContext(ctx).
		Preload("Sender").Preload("Sender.Profile").
		Where("receiver_id = ?", userID).Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	return reqs, nil
}

func (s *Store) CreateRequest(ctx context.Context, senderID, receiverID domain.UserID) (*domain.FriendRequest, error) {
	req := &domain.FriendRequest{
		ID:         domain.RequestID(uuid.NewString()),
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

func (s *Store) DeleteRequest(ctx context.Context, requestID domain.RequestID, userID domain.UserID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND (sender_id = ? OR receiver_id = ?)", requestID, userID, userID).
		Delete(&domain.FriendRequest{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
