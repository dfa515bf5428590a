package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hospital_training_portal/internal/config"
	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/store"
	"hospital_training_portal/internal/upstream"
)

type fakeAuthAPI struct {
	mu           sync.Mutex
	loginGrant   *upstream.TokenGrant
	loginErr     error
	refreshGrant *upstream.TokenGrant
	refreshErr   error
	refreshCalls int32
	refreshGate  chan struct{}
	logoutErr    error
	logoutCalls  int
	meUser       *model.User
	meErr        error
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds upstream.Credentials) (*upstream.TokenGrant, error) {
	return f.loginGrant, f.loginErr
}

func (f *fakeAuthAPI) RefreshToken(ctx context.Context) (*upstream.TokenGrant, error) {
	atomic.AddInt32(&f.refreshCalls, 1)
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	return f.refreshGrant, f.refreshErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAuthAPI) Me(ctx context.Context) (*model.User, error) {
	return f.meUser, f.meErr
}

func testUser() *model.User {
	return &model.User{
		ID:    "u-1",
		Email: "ana@hospital.test",
		Role:  model.Role{ID: "r-1", Name: "empleado"},
	}
}

func newTestManager(t *testing.T, api *fakeAuthAPI) (*Manager, *store.SessionStore) {
	t.Helper()
	st, err := store.NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	m := NewManager(api, st, config.SessionConfig{
		RefreshInterval: time.Hour,
		ExpiryMargin:    60 * time.Second,
	})
	t.Cleanup(m.Shutdown)
	return m, st
}

func TestLoginStoresUserAndExpiry(t *testing.T) {
	api := &fakeAuthAPI{
		loginGrant: &upstream.TokenGrant{AccessToken: "tok", ExpiresIn: 3600},
		meUser:     testUser(),
	}
	m, st := newTestManager(t, api)

	user, err := m.Login(context.Background(), "ana@hospital.test", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u-1" {
		t.Errorf("unexpected user %q", user.ID)
	}
	if m.State() != StateAuthenticated {
		t.Errorf("state = %q, want authenticated", m.State())
	}
	if m.IsTokenExpired() {
		t.Error("token with an hour left should not be expired")
	}

	cached, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cached.User == nil || cached.User.ID != "u-1" {
		t.Error("user not persisted to the cache")
	}
	if cached.TokenExpiresAt == 0 {
		t.Error("expiry not persisted to the cache")
	}
}

func TestLoginRejectsBadCredentialsLocally(t *testing.T) {
	api := &fakeAuthAPI{loginErr: errors.New("should not be called")}
	m, _ := newTestManager(t, api)

	if _, err := m.Login(context.Background(), "not-an-email", "password1"); err == nil {
		t.Error("expected validation error for malformed email")
	}
	if _, err := m.Login(context.Background(), "ana@hospital.test", "short"); err == nil {
		t.Error("expected validation error for short password")
	}
}

func TestIsTokenExpiredUsesMargin(t *testing.T) {
	api := &fakeAuthAPI{}
	m, _ := newTestManager(t, api)

	base := time.Now()
	m.now = func() time.Time { return base }

	// 90s left: outside the 60s margin, still valid
	m.mu.Lock()
	m.expiresAt = base.Add(90 * time.Second)
	m.mu.Unlock()
	if m.IsTokenExpired() {
		t.Error("90s remaining should not count as expired")
	}

	// 30s left: inside the margin, treated as expired
	m.mu.Lock()
	m.expiresAt = base.Add(30 * time.Second)
	m.mu.Unlock()
	if !m.IsTokenExpired() {
		t.Error("30s remaining should count as expired")
	}
}

func TestIsTokenExpiredWithoutRecordedExpiry(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuthAPI{})
	if !m.IsTokenExpired() {
		t.Error("missing expiry must be treated as expired")
	}
}

func TestLogoutClearsLocalStateOnUpstreamFailure(t *testing.T) {
	api := &fakeAuthAPI{
		loginGrant: &upstream.TokenGrant{AccessToken: "tok", ExpiresIn: 3600},
		meUser:     testUser(),
		logoutErr:  errors.New("upstream down"),
	}
	m, st := newTestManager(t, api)

	if _, err := m.Login(context.Background(), "ana@hospital.test", "password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m.Logout(context.Background())

	if m.State() != StateUnauthenticated {
		t.Errorf("state = %q, want unauthenticated", m.State())
	}
	if _, err := m.CurrentUser(); err == nil {
		t.Error("CurrentUser should fail after logout")
	}
	cached, _ := st.Load()
	if cached.User != nil {
		t.Error("cache should be cleared even when the upstream call fails")
	}
}

func TestRefreshSingleFlight(t *testing.T) {
	api := &fakeAuthAPI{
		refreshGrant: &upstream.TokenGrant{AccessToken: "tok", ExpiresIn: 3600},
		refreshGate:  make(chan struct{}),
	}
	m, _ := newTestManager(t, api)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Refresh(context.Background())
		}(i)
	}

	// let every caller join the in-flight renewal before it completes
	time.Sleep(50 * time.Millisecond)
	close(api.refreshGate)
	wg.Wait()

	if got := atomic.LoadInt32(&api.refreshCalls); got != 1 {
		t.Errorf("upstream refresh called %d times, want 1", got)
	}
	for i, ok := range results {
		if !ok {
			t.Errorf("caller %d did not share the successful refresh", i)
		}
	}
}

func TestCheckAuthWithoutCachedUser(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuthAPI{})
	if state := m.CheckAuth(context.Background()); state != StateUnauthenticated {
		t.Errorf("state = %q, want unauthenticated", state)
	}
}

func TestCheckAuthRefreshFailureClearsSession(t *testing.T) {
	api := &fakeAuthAPI{refreshErr: errors.New("refresh token invalid")}
	m, st := newTestManager(t, api)

	// simulate a cached session with an expired token
	m.mu.Lock()
	m.user = testUser()
	m.expiresAt = time.Now().Add(-time.Minute)
	m.mu.Unlock()

	if state := m.CheckAuth(context.Background()); state != StateUnauthenticated {
		t.Errorf("state = %q, want unauthenticated", state)
	}
	cached, _ := st.Load()
	if cached.User != nil {
		t.Error("failed refresh should clear the cached session")
	}
}

func TestCheckAuthConfirmsWithServer(t *testing.T) {
	api := &fakeAuthAPI{meUser: testUser()}
	m, _ := newTestManager(t, api)

	m.mu.Lock()
	m.user = testUser()
	m.expiresAt = time.Now().Add(time.Hour)
	m.mu.Unlock()

	if state := m.CheckAuth(context.Background()); state != StateAuthenticated {
		t.Errorf("state = %q, want authenticated", state)
	}
	if _, err := m.CurrentUser(); err != nil {
		t.Errorf("CurrentUser after CheckAuth: %v", err)
	}
}

func TestExpiryFallsBackToTokenClaims(t *testing.T) {
	// header {"alg":"none"} and payload {"exp": 4102444800} (year 2100)
	token := "eyJhbGciOiJub25lIn0.eyJleHAiOjQxMDI0NDQ4MDB9."

	api := &fakeAuthAPI{
		loginGrant: &upstream.TokenGrant{AccessToken: token},
		meUser:     testUser(),
	}
	m, _ := newTestManager(t, api)

	if _, err := m.Login(context.Background(), "ana@hospital.test", "password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if m.IsTokenExpired() {
		t.Error("expiry should come from the token claims when expires_in is absent")
	}
}

func TestSubscribeSeesTransitions(t *testing.T) {
	api := &fakeAuthAPI{
		loginGrant: &upstream.TokenGrant{AccessToken: "tok", ExpiresIn: 3600},
		meUser:     testUser(),
	}
	m, _ := newTestManager(t, api)
	ch := m.Subscribe()

	if _, err := m.Login(context.Background(), "ana@hospital.test", "password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	select {
	case state := <-ch:
		if state != StateAuthenticated {
			t.Errorf("first transition = %q, want authenticated", state)
		}
	case <-time.After(time.Second):
		t.Fatal("no state transition delivered")
	}
}
