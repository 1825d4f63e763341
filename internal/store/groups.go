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

var ErrForbidden = errors.New("not allowed")

type GroupSummary struct {
	ID   domain.GroupID `json:"id"`
	Name string         `json:"name"`
}

func (s *Store) ListGroupChats(ctx context.Context, userID domain.UserID) ([]GroupSummary, error) {
	var groups []*domain.GroupChat
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Or("id IN (?)", s.db.Table("group_chat_admins").
			Select("group_chat_id").Where("user_id = ?", userID)).
		Or("id IN (?)", s.db.Table("group_chat_members").
			Select("group_chat_id").Where("user_id = ?", userID)).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list group chats: %w", err)
	}
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

func (s *Store) CreateGroupChat(ctx context.Context, ownerID domain.UserID) (*domain.GroupChat, error) {
	group := &domain.GroupChat{
		ID:      domain.GroupID(uuid.NewString()),
		OwnerID: ownerID,
	}
	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create group chat: %w", err)
	}
	return group, nil
}

// GroupView is the detail view returned when a group chat is opened.
type GroupView struct {
	ID       domain.GroupID         `json:"id"`
	Name     string                 `json:"name"`
	ClientID domain.UserID          `json:"clientId"`
	Role     domain.Role            `json:"role"`
	Messages []*domain.GroupMessage `json:"messages"`
}

// GetGroupChat loads a group the caller belongs to and clears the caller's
// unread counter for it.
func (s *Store) GetGroupChat(ctx context.Context, groupID domain.GroupID, userID domain.UserID) (*GroupView, error) {
	role, err := s.RoleOf(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	var group domain.GroupChat
	if err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load group chat: %w", err)
	}
	var messages []*domain.GroupMessage
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).Order("time").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load group messages: %w", err)
	}
	if err := s.ResetGroupCounter(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return &GroupView{
		ID:       group.ID,
		Name:     group.Name,
		ClientID: userID,
		Role:     role,
		Messages: messages,
	}, nil
}

// RoleOf returns the caller's role in the group, or ErrNotFound if the caller
// does not belong to it.
func (s *Store) RoleOf(ctx context.Context, groupID domain.GroupID, userID domain.UserID) (domain.Role, error) {
	var group domain.GroupChat
	if err := s.db.WithContext(ctx).Select("owner_id").First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load group: %w", err)
	}
	if group.OwnerID == userID {
		return domain.RoleOwner, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Table("group_chat_admins").
		Where("group_chat_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check admins: %w", err)
	}
	if count > 0 {
		return domain.RoleAdmin, nil
	}
	if err := s.db.WithContext(ctx).Table("group_chat_members").
		Where("group_chat_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check members: %w", err)
	}
	if count > 0 {
		return domain.RoleMember, nil
	}
	return "", ErrNotFound
}

// GroupMembers lists every user belonging to the group, bucketed by role.
func (s *Store) GroupMembers(ctx context.Context, groupID domain.GroupID) (owner *domain.User, admins, members []*domain.User, err error) {
	var group domain.GroupChat
	err = s.db.WithContext(ctx).
		Preload("Owner").Preload("Admins").Preload("Members").
		First(&group, "id = ?", groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to load group members: %w", err)
	}
	return group.Owner, group.Admins, group.Members, nil
}

// GroupMemberIDs returns the ids of everyone in the group (owner, admins and
// members). The fan-out engine uses this to find absentees.
func (s *Store) GroupMemberIDs(ctx context.Context, groupID domain.GroupID) ([]domain.UserID, error) {
	owner, admins, members, err := s.GroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.UserID, 0, 1+len(admins)+len(members))
	if owner != nil {
		ids = append(ids, owner.ID)
	}
	for _, u := range admins {
		ids = append(ids, u.ID)
	}
	for _, u := range members {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (s *Store) RenameGroup(ctx context.Context, groupID domain.GroupID, userID domain.UserID, name string) error {
	role, err := s.RoleOf(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Model(&domain.GroupChat{}).
		Where("id = ?", groupID).Update("name", name).Error
}

func (s *Store) DeleteGroup(ctx context.Context, groupID domain.GroupID, userID domain.UserID) error {
	role, err := s.RoleOf(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.GroupMessage{}, "group_id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to delete group messages: %w", err)
		}
		if err := tx.Delete(&domain.GroupChatNotification{}, "group_id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to delete group counters: %w", err)
		}
		if err := tx.Exec("DELETE FROM group_chat_admins WHERE group_chat_id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to detach admins: %w", err)
		}
		if err := tx.Exec("DELETE FROM group_chat_members WHERE group_chat_id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to detach members: %w", err)
		}
		if err := tx.Delete(&domain.GroupChat{}, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
}

func (s *Store) AddGroupMembers(ctx context.Context, groupID domain.GroupID, callerID domain.UserID, userIDs []domain.UserID) error {
	role, err := s.RoleOf(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin {
		return ErrForbidden
	}
	group := &domain.GroupChat{ID: groupID}
	users := make([]domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, domain.User{ID: id})
	}
	if err := s.db.WithContext(ctx).Model(group).Association("Members").Append(&users); err != nil {
		return fmt.Errorf("failed to add members: %w", err)
	}
	return nil
}

func (s *Store) RemoveGroupMember(ctx context.Context, groupID domain.GroupID, callerID, memberID domain.UserID) error {
	role, err := s.RoleOf(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin && callerID != memberID {
		return ErrForbidden
	}
	group := &domain.GroupChat{ID: groupID}
	user := &domain.User{ID: memberID}
	if err := s.db.WithContext(ctx).Model(group).Association("Members").Delete(user); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(group).Association("Admins").Delete(user); err != nil {
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	return nil
}

// MakeAdmin promotes a member to admin. Only the owner or an admin may do it.
func (s *Store) MakeAdmin(ctx context.Context, groupID domain.GroupID, callerID, memberID domain.UserID) error {
	return s.swapRole(ctx, groupID, callerID, memberID, "Members", "Admins")
}

// SuspendAdmin demotes an admin back to member.
func (s *Store) SuspendAdmin(ctx context.Context, groupID domain.GroupID, callerID, memberID domain.UserID) error {
	return s.swapRole(ctx, groupID, callerID, memberID, "Admins", "Members")
}

func (s *Store) swapRole(ctx context.Context, groupID domain.GroupID, callerID, memberID domain.UserID, from, to string) error {
	role, err := s.RoleOf(ctx, groupID, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleOwner && role != domain.RoleAdmin {
		return ErrForbidden
	}
	group := &domain.GroupChat{ID: groupID}
	user := &domain.User{ID: memberID}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association(from).Delete(user); err != nil {
			return fmt.Errorf("failed to drop old role: %w", err)
		}
		if err := tx.Model(group).Association(to).Append(user); err != nil {
			return fmt.Errorf("failed to grant new role: %w", err)
		}
		return nil
	})
}

// UsersToAdd lists the caller's chat partners not yet in the group.
func (s *Store) UsersToAdd(ctx context.Context, groupID domain.GroupID, callerID domain.UserID) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Table("chat_users").
			Select("user_id").
			Where("user_id <> ?", callerID).
			Where("chat_id IN (?)", s.db.Table("chat_users").
				Select("chat_id").Where("user_id = ?", callerID))).
		Where("id NOT IN (?)", s.db.Table("group_chat_members").
			Select("user_id").Where("group_chat_id = ?", groupID)).
		Where("id NOT IN (?)", s.db.Table("group_chat_admins").
			Select("user_id").Where("group_chat_id = ?", groupID)).
		Where("id NOT IN (?)", s.db.Model(&domain.GroupChat{}).
			Select("owner_id").Where("id = ?", groupID)).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users to add: %w", err)
	}
	return users, nil
}

// CreateGroupMessage persists one group message, unconditionally.
func (s *Store) CreateGroupMessage(ctx context.Context, groupID domain.GroupID, userID domain.UserID, text string, at time.Time) (*domain.GroupMessage, error) {
	msg := &domain.GroupMessage{
		ID:      domain.MessageID(uuid.NewString()),
		GroupID: groupID,
		UserID:  userID,
		Text:    text,
		Time:    at,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to create group message: %w", err)
	}
	return msg, nil
}
