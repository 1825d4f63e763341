package store

import (
	"context"
	"testing"
	"time"

	"github.com/mfadel/linkup/internal/domain"
)

func TestCreateChatFromRequest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "u1", "alice")
	mustCreateUser(t, s, "u2", "bob")

	req, err := s.CreateRequest(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	chat, err := s.CreateChat(ctx, "u2", "u1", req.ID)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}

	t.Run("request consumed", func(t *testing.T) {
		sent, err := s.SentRequests(ctx, "u1")
		if err != nil {
			t.Fatalf("SentRequests() error = %v", err)
		}
		if len(sent) != 0 {
			t.Errorf("request still listed after accept: %v", sent)
		}
	})

	t.Run("both users are members", func(t *testing.T) {
		for _, id := range []string{"u1", "u2"} {
			member, err := s.IsChatMember(ctx, chat.ID, domain.UserID(id))
			if err != nil {
				t.Fatalf("IsChatMember(%s) error = %v", id, err)
			}
			if !member {
				t.Errorf("user %s is not a chat member", id)
			}
		}
	})

	t.Run("accepting twice fails", func(t *testing.T) {
		if _, err := s.CreateChat(ctx, "u2", "u1", req.ID); err != ErrNotFound {
			t.Errorf("CreateChat() error = %v, want ErrNotFound", err)
		}
	})
}

func TestGetChatResetsCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "u1", "alice")
	mustCreateUser(t, s, "u2", "bob")
	req, err := s.CreateRequest(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	chat, err := s.CreateChat(ctx, "u2", "u1", req.ID)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}

	if _, err := s.CreateMessage(ctx, chat.ID, "u1", "hello", time.Now()); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if err := s.IncrementChatCounter(ctx, "u2", chat.ID); err != nil {
		t.Fatalf("IncrementChatCounter() error = %v", err)
	}

	view, err := s.GetChat(ctx, chat.ID, "u2")
	if err != nil {
		t.Fatalf("GetChat() error = %v", err)
	}
	if len(view.Messages) != 1 || view.Messages[0].Text != "hello" {
		t.Errorf("unexpected messages %v", view.Messages)
	}
	if view.ReceiverID != "u1" || view.ReceiverName != "alice" {
		t.Errorf("unexpected peer %q %q", view.ReceiverID, view.ReceiverName)
	}

	count, err := s.ChatCounter(ctx, "u2", chat.ID)
	if err != nil {
		t.Fatalf("ChatCounter() error = %v", err)
	}
	if count != 0 {
		t.Errorf("counter = %d after opening the chat, want 0", count)
	}

	t.Run("non-member is rejected", func(t *testing.T) {
		mustCreateUser(t, s, "u3", "carol")
		if _, err := s.GetChat(ctx, chat.ID, "u3"); err != ErrNotFound {
			t.Errorf("GetChat() error = %v, want ErrNotFound", err)
		}
	})
}

func TestListChats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "u1", "alice")
	mustCreateUser(t, s, "u2", "bob")
	req, err := s.CreateRequest(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}
	chat, err := s.CreateChat(ctx, "u2", "u1", req.ID)
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if err := s.IncrementChatCounter(ctx, "u1", chat.ID); err != nil {
		t.Fatalf("IncrementChatCounter() error = %v", err)
	}

	chats, err := s.ListChats(ctx, "u1")
	if err != nil {
		t.Fatalf("ListChats() error = %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("ListChats() returned %d chats, want 1", len(chats))
	}
	if chats[0].Username != "bob" {
		t.Errorf("peer = %q, want bob", chats[0].Username)
	}
	if chats[0].Unread != 1 {
		t.Errorf("unread = %d, want 1", chats[0].Unread)
	}
}
