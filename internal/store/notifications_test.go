package store

import (
	"context"
	"sync"
	"testing"
)

func TestIncrementChatCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	t.Run("created lazily on first miss", func(t *testing.T) {
		count, err := s.ChatCounter(ctx, "u1", "chat-1")
		if err != nil {
			t.Fatalf("ChatCounter() error = %v", err)
		}
		if count != 0 {
			t.Errorf("counter = %d before any miss, want 0", count)
		}

		if err := s.IncrementChatCounter(ctx, "u1", "chat-1"); err != nil {
			t.Fatalf("IncrementChatCounter() error = %v", err)
		}
		count, err = s.ChatCounter(ctx, "u1", "chat-1")
		if err != nil {
			t.Fatalf("ChatCounter() error = %v", err)
		}
		if count != 1 {
			t.Errorf("counter = %d, want 1", count)
		}
	})

	t.Run("upsert increments existing row", func(t *testing.T) {
		if err := s.IncrementChatCounter(ctx, "u1", "chat-1"); err != nil {
			t.Fatalf("IncrementChatCounter() error = %v", err)
		}
		count, err := s.ChatCounter(ctx, "u1", "chat-1")
		if err != nil {
			t.Fatalf("ChatCounter() error = %v", err)
		}
		if count != 2 {
			t.Errorf("counter = %d, want 2", count)
		}
	})

	t.Run("pairs are independent", func(t *testing.T) {
		if err := s.IncrementChatCounter(ctx, "u2", "chat-1"); err != nil {
			t.Fatalf("IncrementChatCounter() error = %v", err)
		}
		count, err := s.ChatCounter(ctx, "u2", "chat-1")
		if err != nil {
			t.Fatalf("ChatCounter() error = %v", err)
		}
		if count != 1 {
			t.Errorf("counter = %d, want 1", count)
		}
	})

	t.Run("reset removes the row", func(t *testing.T) {
		if err := s.ResetChatCounter(ctx, "u1", "chat-1"); err != nil {
			t.Fatalf("ResetChatCounter() error = %v", err)
		}
		count, err := s.ChatCounter(ctx, "u1", "chat-1")
		if err != nil {
			t.Fatalf("ChatCounter() error = %v", err)
		}
		if count != 0 {
			t.Errorf("counter = %d after reset, want 0", count)
		}
	})
}

func TestConcurrentIncrements(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.IncrementChatCounter(ctx, "u1", "chat-1"); err != nil {
				t.Errorf("IncrementChatCounter() error = %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := s.ChatCounter(ctx, "u1", "chat-1")
	if err != nil {
		t.Fatalf("ChatCounter() error = %v", err)
	}
	if count != n {
		t.Errorf("counter = %d, want %d (lost updates)", count, n)
	}
}

func TestGroupCounter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.IncrementGroupCounter(ctx, "u1", "group-1"); err != nil {
			t.Fatalf("IncrementGroupCounter() error = %v", err)
		}
	}
	count, err := s.GroupCounter(ctx, "u1", "group-1")
	if err != nil {
		t.Fatalf("GroupCounter() error = %v", err)
	}
	if count != 3 {
		t.Errorf("counter = %d, want 3", count)
	}

	if err := s.ResetGroupCounter(ctx, "u1", "group-1"); err != nil {
		t.Fatalf("ResetGroupCounter() error = %v", err)
	}
	count, err = s.GroupCounter(ctx, "u1", "group-1")
	if err != nil {
		t.Fatalf("GroupCounter() error = %v", err)
	}
	if count != 0 {
		t.Errorf("counter = %d after reset, want 0", count)
	}
}
