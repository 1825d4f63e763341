package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mfadel/linkup/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
}

func (f *fakeConn) TrySend(frame Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() {}

type fakeResolver struct {
	identities map[string]domain.Identity
}

func (r *fakeResolver) Resolve(_ context.Context, credential string) (domain.Identity, error) {
	id, ok := r.identities[credential]
	if !ok {
		return domain.Identity{}, errors.New("bad credential")
	}
	return id, nil
}

func newTestRegistry() *Registry {
	return NewRegistry(&fakeResolver{identities: map[string]domain.Identity{
		"token-a": {ID: "user-a", Username: "alice"},
		"token-b": {ID: "user-b", Username: "bob"},
	}})
}

func connect(t *testing.T, reg *Registry, id ConnID, token string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	reg.Connect(id, conn)
	if _, err := reg.Register(context.Background(), id, token); err != nil {
		t.Fatalf("Register(%s) error = %v", id, err)
	}
	return conn
}

func TestRegister(t *testing.T) {
	reg := newTestRegistry()

	t.Run("valid credential", func(t *testing.T) {
		connect(t, reg, "c1", "token-a")

		identity, ok := reg.IdentityOf("c1")
		if !ok {
			t.Fatal("IdentityOf() = not found")
		}
		if identity.ID != "user-a" || identity.Username != "alice" {
			t.Errorf("unexpected identity %+v", identity)
		}
		if !reg.InRoom("c1", domain.PersonalRoom("user-a")) {
			t.Error("connection not in its personal room after register")
		}
	})

	t.Run("bad credential stays anonymous", func(t *testing.T) {
		conn := &fakeConn{}
		reg.Connect("c2", conn)
		if _, err := reg.Register(context.Background(), "c2", "nope"); err == nil {
			t.Fatal("Register() with bad credential succeeded")
		}
		if _, ok := reg.IdentityOf("c2"); ok {
			t.Error("anonymous connection has an identity")
		}
		if err := reg.JoinConversation("c2", "room-1"); !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("JoinConversation() error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("disconnected while authenticating", func(t *testing.T) {
		if _, err := reg.Register(context.Background(), "ghost", "token-a"); !errors.Is(err, ErrUnknownConnection) {
			t.Errorf("Register() error = %v, want ErrUnknownConnection", err)
		}
	})
}

func TestJoinConversationSwaps(t *testing.T) {
	reg := newTestRegistry()
	connect(t, reg, "c1", "token-a")

	if err := reg.JoinConversation("c1", "room-1"); err != nil {
		t.Fatalf("JoinConversation(room-1) error = %v", err)
	}
	if err := reg.JoinConversation("c1", "room-2"); err != nil {
		t.Fatalf("JoinConversation(room-2) error = %v", err)
	}

	if reg.InRoom("c1", "room-1") {
		t.Error("still in room-1 after swapping to room-2")
	}
	if !reg.InRoom("c1", "room-2") {
		t.Error("not in room-2 after join")
	}
	if !reg.InRoom("c1", domain.PersonalRoom("user-a")) {
		t.Error("personal room lost during swap")
	}
	if key, ok := reg.ConversationOf("c1"); !ok || key != "room-2" {
		t.Errorf("ConversationOf() = %q, %v", key, ok)
	}
}

// Personal-room keys are guessable, so offering one as a conversation key
// must be rejected outright; otherwise a client could camp in another user's
// personal room and read their notification pushes.
func TestJoinConversationRejectsPersonalKeys(t *testing.T) {
	reg := newTestRegistry()
	a := connect(t, reg, "a1", "token-a")
	connect(t, reg, "b1", "token-b")

	t.Run("foreign personal room", func(t *testing.T) {
		err := reg.JoinConversation("a1", domain.PersonalRoom("user-b"))
		if !errors.Is(err, ErrInvalidRoomKey) {
			t.Fatalf("JoinConversation() error = %v, want ErrInvalidRoomKey", err)
		}

		sent := reg.PushToUser("user-b", Frame("secret"))
		if sent != 1 {
			t.Errorf("PushToUser() reached %d connections, want 1 (b1 only)", sent)
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if len(a.frames) != 0 {
			t.Errorf("foreign connection received personal frames: %v", a.frames)
		}
	})

	t.Run("own personal room", func(t *testing.T) {
		err := reg.JoinConversation("a1", domain.PersonalRoom("user-a"))
		if !errors.Is(err, ErrInvalidRoomKey) {
			t.Errorf("JoinConversation() error = %v, want ErrInvalidRoomKey", err)
		}
	})

	t.Run("later swaps never leave the personal room", func(t *testing.T) {
		if err := reg.JoinConversation("a1", "room-1"); err != nil {
			t.Fatalf("JoinConversation(room-1) error = %v", err)
		}
		if !reg.InRoom("a1", domain.PersonalRoom("user-a")) {
			t.Error("personal room lost during swap")
		}
	})
}

func TestUnregisterRemovesEverywhere(t *testing.T) {
	reg := newTestRegistry()
	connect(t, reg, "c1", "token-a")
	if err := reg.JoinConversation("c1", "room-1"); err != nil {
		t.Fatalf("JoinConversation() error = %v", err)
	}

	reg.Unregister("c1")

	for _, key := range []domain.RoomKey{"room-1", domain.PersonalRoom("user-a")} {
		snap := reg.Snapshot(key)
		if len(snap.Members) != 0 {
			t.Errorf("snapshot of %s still has %d members after unregister", key, len(snap.Members))
		}
	}
	if _, ok := reg.IdentityOf("c1"); ok {
		t.Error("identity survives unregister")
	}
}

func TestSnapshot(t *testing.T) {
	reg := newTestRegistry()
	connect(t, reg, "a1", "token-a")
	connect(t, reg, "a2", "token-a") // second device, same user
	connect(t, reg, "b1", "token-b")
	for _, id := range []ConnID{"a1", "a2", "b1"} {
		if err := reg.JoinConversation(id, "room-1"); err != nil {
			t.Fatalf("JoinConversation(%s) error = %v", id, err)
		}
	}

	snap := reg.Snapshot("room-1")
	if len(snap.Members) != 3 {
		t.Fatalf("snapshot has %d members, want 3", len(snap.Members))
	}
	if !snap.Present("user-a") || !snap.Present("user-b") {
		t.Error("expected both users present")
	}
	if snap.Present("user-c") {
		t.Error("unexpected user present")
	}

	t.Run("anonymous connections excluded", func(t *testing.T) {
		anon := &fakeConn{}
		reg.Connect("anon", anon)
		snap := reg.Snapshot("room-1")
		for _, m := range snap.Members {
			if m.ID == "anon" {
				t.Error("anonymous connection in snapshot")
			}
		}
	})

	t.Run("broadcast skips all sender connections", func(t *testing.T) {
		sent := snap.Broadcast("user-a", Frame("hi"))
		if sent != 1 {
			t.Errorf("Broadcast() sent to %d connections, want 1 (only b1)", sent)
		}
	})
}

func TestPushToUser(t *testing.T) {
	reg := newTestRegistry()
	b1 := connect(t, reg, "b1", "token-b")
	// b is viewing some other conversation; the personal push must still land.
	if err := reg.JoinConversation("b1", "room-9"); err != nil {
		t.Fatalf("JoinConversation() error = %v", err)
	}

	sent := reg.PushToUser("user-b", Frame("ping"))
	if sent != 1 {
		t.Fatalf("PushToUser() reached %d connections, want 1", sent)
	}
	b1.mu.Lock()
	defer b1.mu.Unlock()
	if len(b1.frames) != 1 || string(b1.frames[0]) != "ping" {
		t.Errorf("unexpected frames %v", b1.frames)
	}
}

// A connection must never be observed in two conversation rooms, whatever the
// interleaving of swaps and snapshots.
func TestConcurrentSwapKeepsSingleConversation(t *testing.T) {
	reg := newTestRegistry()
	connect(t, reg, "c1", "token-a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			key := domain.RoomKey("room-1")
			if i%2 == 1 {
				key = "room-2"
			}
			if err := reg.JoinConversation("c1", key); err != nil {
				t.Errorf("JoinConversation() error = %v", err)
				return
			}
		}
	}()

	for i := 0; i < 500; i++ {
		in1 := 0
		in2 := 0
		snap1 := reg.Snapshot("room-1")
		for _, m := range snap1.Members {
			if m.ID == "c1" {
				in1++
			}
		}
		snap2 := reg.Snapshot("room-2")
		for _, m := range snap2.Members {
			if m.ID == "c1" {
				in2++
			}
		}
		if in1 > 1 || in2 > 1 {
			t.Fatalf("connection double-counted: room-1=%d room-2=%d", in1, in2)
		}
	}
	<-done

	// After the dust settles: exactly one conversation room held.
	count := 0
	for _, key := range []domain.RoomKey{"room-1", "room-2"} {
		if reg.InRoom("c1", key) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("connection holds %d conversation rooms, want 1", count)
	}
}
