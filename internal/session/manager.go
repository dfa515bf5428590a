// Package session owns the single process-wide authenticated session and
// keeps it consistent with server-side token validity. The manager is the
// only writer; every view reads through it.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"hospital_training_portal/internal/config"
	"hospital_training_portal/internal/model"
	"hospital_training_portal/internal/store"
	"hospital_training_portal/internal/upstream"
	"hospital_training_portal/internal/util"
	"hospital_training_portal/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type State string

const (
	StateUnknown         State = "unknown"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// AuthAPI is the slice of the upstream client the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, creds upstream.Credentials) (*upstream.TokenGrant, error)
	RefreshToken(ctx context.Context) (*upstream.TokenGrant, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
}

type Manager struct {
	api      AuthAPI
	store    *store.SessionStore
	margin   time.Duration
	interval time.Duration

	mu        sync.RWMutex
	state     State
	user      *model.User
	expiresAt time.Time

	refreshGroup singleflight.Group

	refresherMu     sync.Mutex
	refresherCancel context.CancelFunc

	subMu       sync.Mutex
	subscribers []chan State

	now func() time.Time
}

func NewManager(api AuthAPI, st *store.SessionStore, cfg config.SessionConfig) *Manager {
	m := &Manager{
		api:      api,
		store:    st,
		margin:   cfg.ExpiryMargin,
		interval: cfg.RefreshInterval,
		state:    StateUnknown,
		now:      time.Now,
	}
	if m.margin <= 0 {
		m.margin = 60 * time.Second
	}
	if m.interval <= 0 {
		m.interval = 5 * time.Minute
	}

	if cached, err := st.Load(); err == nil {
		m.user = cached.User
		if cached.TokenExpiresAt > 0 {
			m.expiresAt = time.UnixMilli(cached.TokenExpiresAt)
		}
	}
	return m
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CurrentUser returns the session's user; any view may call this
// concurrently.
func (m *Manager) CurrentUser() (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return nil, util.ErrNotAuthenticated
	}
	return m.user, nil
}

// Subscribe delivers state transitions. Slow receivers miss updates
// rather than blocking the manager.
func (m *Manager) Subscribe() <-chan State {
	ch := make(chan State, 4)
	m.subMu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.subMu.Unlock()
	return ch
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	changed := m.state != s
	m.state = s
	m.mu.Unlock()

	if !changed {
		return
	}
	m.subMu.Lock()
	for _, ch := range m.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
	m.subMu.Unlock()
}

// Login authenticates, caches the user and expiry locally, confirms the
// identity with the server and starts the periodic refresher. Failures
// come back as typed errors, never panics.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	grant, err := m.api.Login(ctx, upstream.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	m.recordExpiry(grant)

	user, err := m.api.Me(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	if err := m.store.SaveUser(user); err != nil {
		logger.Log.Warn("failed to persist session user", zap.Error(err))
	}

	m.setState(StateAuthenticated)
	m.startRefresher()

	logger.Log.Info("login succeeded",
		zap.String("email", user.Email),
		zap.String("role", user.Role.Name))
	return user, nil
}

// Logout tears the session down. Local state goes first and the cache is
// always cleared; the upstream notification is best-effort, so a dead
// network can never trap the user in a session.
func (m *Manager) Logout(ctx context.Context) {
	m.stopRefresher()

	m.mu.Lock()
	m.user = nil
	m.expiresAt = time.Time{}
	m.mu.Unlock()
	m.setState(StateUnauthenticated)

	if err := m.api.Logout(ctx); err != nil {
		logger.Log.Warn("upstream logout failed, local state cleared anyway", zap.Error(err))
	}
	if err := m.store.Clear(); err != nil {
		logger.Log.Warn("failed to clear session cache", zap.Error(err))
	}
}

// Refresh renews the token silently and reports success. Concurrent
// callers share a single in-flight renewal; overlapping upstream calls
// would race on the stored expiry.
func (m *Manager) Refresh(ctx context.Context) bool {
	ok, _, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		grant, err := m.api.RefreshToken(ctx)
		if err != nil {
			logger.Log.Debug("token refresh failed", zap.Error(err))
			return false, nil
		}
		m.recordExpiry(grant)
		return true, nil
	})
	return ok.(bool)
}

// CheckAuth reconciles the local session with the server. It is
// idempotent and safe to call repeatedly: cached identity, then expiry
// check with refresh, then confirmation against auth/me.
func (m *Manager) CheckAuth(ctx context.Context) State {
	m.mu.RLock()
	cachedUser := m.user
	m.mu.RUnlock()

	if cachedUser == nil {
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	if m.IsTokenExpired() {
		if !m.Refresh(ctx) {
			m.teardownLocal()
			return StateUnauthenticated
		}
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.teardownLocal()
		return StateUnauthenticated
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	if err := m.store.SaveUser(user); err != nil {
		logger.Log.Warn("failed to persist session user", zap.Error(err))
	}

	m.setState(StateAuthenticated)
	m.startRefresher()
	return StateAuthenticated
}

// IsTokenExpired treats a token with less than the configured margin
// left (60s by default) as already expired, leaving room to refresh
// before requests start bouncing.
func (m *Manager) IsTokenExpired() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.expiresAt.IsZero() {
		return true
	}
	return !m.now().Before(m.expiresAt.Add(-m.margin))
}

func (m *Manager) recordExpiry(grant *upstream.TokenGrant) {
	expiresAt := m.expiryFromGrant(grant)
	if expiresAt.IsZero() {
		return
	}

	m.mu.Lock()
	m.expiresAt = expiresAt
	m.mu.Unlock()
	if err := m.store.SaveExpiry(expiresAt); err != nil {
		logger.Log.Warn("failed to persist token expiry", zap.Error(err))
	}
}

// expiryFromGrant prefers the explicit expires_in; when the upstream
// omits it, the expiry claim of the (unverified) access token is the
// fallback. Verification is the upstream's job, the gateway only needs
// the timestamp.
func (m *Manager) expiryFromGrant(grant *upstream.TokenGrant) time.Time {
	if grant.ExpiresIn > 0 {
		return m.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	}
	if grant.AccessToken == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(grant.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (m *Manager) teardownLocal() {
	m.stopRefresher()
	m.mu.Lock()
	m.user = nil
	m.expiresAt = time.Time{}
	m.mu.Unlock()
	m.setState(StateUnauthenticated)
	if err := m.store.Clear(); err != nil {
		logger.Log.Warn("failed to clear session cache", zap.Error(err))
	}
}

// startRefresher launches the periodic expiry check. The task is bound
// to a context owned by the manager so Logout cancels it deterministically
// instead of leaning on teardown ordering.
func (m *Manager) startRefresher() {
	m.refresherMu.Lock()
	defer m.refresherMu.Unlock()
	if m.refresherCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.refresherCancel = cancel

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !m.IsTokenExpired() {
					continue
				}
				if !m.Refresh(ctx) {
					logger.Log.Info("background refresh failed, logging out")
					m.Logout(context.Background())
					return
				}
			}
		}
	}()
}

// Shutdown stops the background refresher without touching the session:
// the cached user and expiry survive a restart, logging out does not.
func (m *Manager) Shutdown() {
	m.stopRefresher()
}

func (m *Manager) stopRefresher() {
	m.refresherMu.Lock()
	defer m.refresherMu.Unlock()
	if m.refresherCancel != nil {
		m.refresherCancel()
		m.refresherCancel = nil
	}
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return util.NewValidationError("email", "is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return util.NewValidationError("email", "is not a valid address")
	}
	if len(password) < 8 {
		return util.NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}
