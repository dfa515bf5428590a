package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hospital_training_portal/internal/model"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	st, err := NewSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	return st
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	st := newTestStore(t)
	cached, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cached.User != nil || cached.TokenExpiresAt != 0 {
		t.Errorf("fresh store should be empty, got %+v", cached)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	st := newTestStore(t)

	user := &model.User{ID: "u-1", Email: "ana@hospital.test"}
	if err := st.SaveUser(user); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	expiry := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	if err := st.SaveExpiry(expiry); err != nil {
		t.Fatalf("SaveExpiry: %v", err)
	}

	cached, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cached.User == nil || cached.User.ID != "u-1" {
		t.Errorf("user = %+v", cached.User)
	}
	if got := time.UnixMilli(cached.TokenExpiresAt); !got.Equal(expiry) {
		t.Errorf("expiry = %v, want %v", got, expiry)
	}
}

func TestSaveExpiryKeepsUser(t *testing.T) {
	st := newTestStore(t)
	if err := st.SaveUser(&model.User{ID: "u-1", Email: "a@b.c"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := st.SaveExpiry(time.Now()); err != nil {
		t.Fatalf("SaveExpiry: %v", err)
	}

	cached, _ := st.Load()
	if cached.User == nil {
		t.Error("saving the expiry must not drop the cached user")
	}
}

func TestClear(t *testing.T) {
	st := newTestStore(t)
	if err := st.SaveUser(&model.User{ID: "u-1"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	cached, err := st.Load()
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if cached.User != nil {
		t.Error("store should be empty after Clear")
	}

	// clearing an already-empty store is fine
	if err := st.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	st, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	cached, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cached.User != nil {
		t.Error("corrupt cache should read as empty, not fail")
	}
}
