package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfadel/linkup/internal/domain"
)

// ChatSummary is the list-view of a direct chat: the peer's data plus the
// caller's unread count.
type ChatSummary struct {
	ID       domain.ChatID  `json:"id"`
	Username string         `json:"username"`
	Status   string         `json:"status"`
	Profile  domain.Profile `json:"receiverProfile"`
	Unread   int            `json:"unread"`
}

func (s *Store) ListChats(ctx context.Context, userID domain.UserID) ([]ChatSummary, error) {
	var chats []*domain.Chat
	err := s.db.WithContext(ctx).
		Preload("Users", "id <> ?", userID).
		Preload("Users.Profile").
		Where("id IN (?)", s.db.Table("chat_users").
			Select("chat_id").Where("user_id = ?", userID)).
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	out := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		if len(chat.Users) == 0 {
			continue
		}
		peer := chat.Users[0]
		var notif domain.ChatNotification
		unread := 0
		err := s.db.WithContext(ctx).
			First(&notif, "user_id = ? AND chat_id = ?", userID, chat.ID).Error
		if err == nil {
			unread = notif.Count
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to read unread count: %w", err)
		}
		out = append(out, ChatSummary{
			ID:       chat.ID,
			Username: peer.Username,
			Status:   peer.Status,
			Profile:  peer.Profile,
			Unread:   unread,
		})
	}
	return out, nil
}

// CreateChat accepts a friend request: the request row is deleted and a chat
// connecting both users is created, in one transaction.
func (s *Store) CreateChat(ctx context.Context, userID, friendID domain.UserID, requestID domain.RequestID) (*domain.Chat, error) {
	chat := &domain.Chat{ID: domain.ChatID(uuid.NewString())}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.FriendRequest{}, "id = ?", requestID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Create(chat).Error; err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
		users := []domain.User{{ID: userID}, {ID: friendID}}
		if err := tx.Model(chat).Association("Users").Append(&users); err != nil {
			return fmt.Errorf("failed to attach chat users: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// ChatView is the detail view returned when a conversation is opened.
type ChatView struct {
	ID              domain.ChatID     `json:"id"`
	Messages        []*domain.Message `json:"messages"`
	ClientID        domain.UserID     `json:"clientId"`
	ReceiverID      domain.UserID     `json:"receiverId"`
	ReceiverName    string            `json:"receiverName"`
	ReceiverProfile domain.Profile    `json:"receiverProfile"`
}

// GetChat loads a chat the caller belongs to. Opening the chat clears the
// caller's unread counter for it.
func (s *Store) GetChat(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (*ChatView, error) {
	member, err := s.IsChatMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotFound
	}

	var chat domain.Chat
	err = s.db.WithContext(ctx).
		Preload("Users", "id <> ?", userID).
		Preload("Users.Profile").
		First(&chat, "id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}

	var messages []*domain.Message
	if err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).Order("time").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	if err := s.ResetChatCounter(ctx, userID, chatID); err != nil {
		return nil, err
	}

	view := &ChatView{
		ID:       chat.ID,
		Messages: messages,
		ClientID: userID,
	}
	if len(chat.Users) > 0 {
		view.ReceiverID = chat.Users[0].ID
		view.ReceiverName = chat.Users[0].Username
		view.ReceiverProfile = chat.Users[0].Profile
	}
	return view, nil
}

func (s *Store) IsChatMember(ctx context.Context, chatID domain.ChatID, userID domain.UserID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Table("chat_users").
		Where("chat_id = ? AND user_id = ?", chatID, userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return count > 0, nil
}

func (s *Store) DeleteChat(ctx context.Context, chatID domain.ChatID, userID domain.UserID) error {
	member, err := s.IsChatMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Message{}, "chat_id = ?", chatID).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Delete(&domain.ChatNotification{}, "chat_id = ?", chatID).Error; err != nil {
			return fmt.Errorf("failed to delete counters: %w", err)
		}
		if err := tx.Exec("DELETE FROM chat_users WHERE chat_id = ?", chatID).Error; err != nil {
			return fmt.Errorf("failed to detach chat users: %w", err)
		}
		if err := tx.Delete(&domain.Chat{}, "id = ?", chatID).Error; err != nil {
			return fmt.Errorf("failed to delete chat: %w", err)
		}
		return nil
	})
}

// CreateMessage persists one direct message. Unconditional: called once per
// send whether or not the recipient was present.
func (s *Store) CreateMessage(ctx context.Context, chatID domain.ChatID, userID domain.UserID, text string, at time.Time) (*domain.Message, error) {
	msg := &domain.Message{
		ID:     domain.MessageID(uuid.NewString()),
		ChatID: chatID,
		UserID: userID,
		Text:   text,
		Time:   at,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}
