package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfadel/linkup/internal/adapters/signal"
	"github.com/mfadel/linkup/internal/app"
	"github.com/mfadel/linkup/internal/auth"
	"github.com/mfadel/linkup/internal/config"
	"github.com/mfadel/linkup/internal/core"
	"github.com/mfadel/linkup/internal/store"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s, err := store.New(db)
	if err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cfg := &config.Config{
		Mode:       "release",
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		ReadLimit:  32768,
		SendBuffer: 32,
		PingPeriod: 54 * time.Second,
	}
	tokens := auth.NewTokenManager(cfg.Secret, cfg.TokenTTL)
	registry := core.NewRegistry(auth.NewResolver(tokens, s))
	engine := app.NewEngine(registry, s)
	ws := signal.NewController(registry, engine, cfg)

	return SetupRouter(context.Background(), cfg, s, tokens, ws)
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("auth", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignUpAndLogin(t *testing.T) {
	r := setupTestRouter(t)

	w := doJSON(t, r, "POST", "/sign-up", "", map[string]string{
		"username":  "alice",
		"password":  "hunter2",
		"firstName": "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up status = %d, want 201", w.Code)
	}

	t.Run("duplicate username", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/sign-up", "", map[string]string{
			"username": "alice",
			"password": "other",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("sign-up status = %d, want 409", w.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, r, "POST", "/login", "", map[string]string{
			"username": "alice",
			"password": "wrong",
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("login status = %d, want 403", w.Code)
		}
	})

	w = doJSON(t, r, "POST", "/login", "", map[string]string{
		"username": "alice",
		"password": "hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned no token")
	}

	t.Run("protected route with token", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/user/profile", resp.Token, nil)
		if w.Code != http.StatusOK {
			t.Errorf("profile status = %d, want 200", w.Code)
		}
	})

	t.Run("protected route without token", func(t *testing.T) {
		w := doJSON(t, r, "GET", "/user/profile", "", nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("profile status = %d, want 403", w.Code)
		}
	})
}
