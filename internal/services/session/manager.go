package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/notify"
	"github.com/mcoot/tourcompanion/internal/services/credential"
)

// Authenticator is the remote authentication collaborator
type Authenticator interface {
	Login(ctx context.Context, identifier, secret string) (*model.AuthResult, error)
	LoginAsGuest(ctx context.Context) (*model.AuthResult, error)
}

// Manager owns the authentication session. It is the only writer of the
// credential store; everyone else reads snapshots or subscribes.
type Manager struct {
	store  *credential.Store
	auth   Authenticator
	logger *slog.Logger

	// commitMu serializes credential store writes with the transitions
	// they belong to; mu only guards the fields below for readers.
	commitMu sync.Mutex

	mu      sync.Mutex
	session model.Session
	// seq is bumped by every operation that may change the session, so a
	// login response that returns after a newer operation is dropped.
	seq uint64

	// pending holds committed transitions in commit order until delivered.
	// One goroutine at a time drains it, so listeners see commit order even
	// when transitions race or a listener triggers another transition.
	notifyMu sync.Mutex
	pending  []model.Session
	draining bool

	listeners *notify.Broadcaster[model.Session]
}

// New creates a Manager in the loading state
func New(store *credential.Store, auth Authenticator, logger *slog.Logger) *Manager {
	logger = logger.With(slog.String("component", "session"))
	return &Manager{
		store:     store,
		auth:      auth,
		logger:    logger,
		session:   model.NewLoadingSession(),
		listeners: notify.New[model.Session](logger, "session-listeners"),
	}
}

// Session returns a snapshot of the current session
func (m *Manager) Session() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Status returns the current session status
func (m *Manager) Status() model.SessionStatus {
	return m.Session().Status
}

// Token returns the current token, or "" when there is none.
// It lets the remote client pick up the token per request.
func (m *Manager) Token() string {
	return m.Session().Token
}

// Subscribe registers fn for every session transition. Transitions reach
// listeners in commit order, possibly on the goroutine that committed an
// earlier one. A listener may start another transition; it is delivered
// after the current one.
func (m *Manager) Subscribe(fn func(model.Session)) func() {
	return m.listeners.Subscribe(fn)
}

// LoadStoredSession resolves the loading state from persisted credentials.
// Only the first call while loading does any work; later calls are no-ops.
// A storage failure still resolves the session, to unauthenticated.
func (m *Manager) LoadStoredSession(ctx context.Context) error {
	m.commitMu.Lock()
	if m.Status() != model.StatusLoading {
		m.commitMu.Unlock()
		return nil
	}

	creds, loadErr := m.store.Load(ctx)

	next := model.Session{Status: model.StatusUnauthenticated}
	if loadErr == nil && creds != nil {
		next = sessionFromCredentials(creds)
	}
	// No seq bump: a login already in flight should still land after this
	m.mu.Lock()
	m.session = next
	m.mu.Unlock()
	m.enqueue(next)
	m.commitMu.Unlock()

	if loadErr != nil {
		m.logger.Error("failed to load stored session", slog.String("error", loadErr.Error()))
	} else {
		m.logger.Info("stored session loaded", slog.String("status", string(next.Status)))
	}
	m.flush()
	return loadErr
}

// Login authenticates with the remote collaborator and persists the result.
// On failure the session is unchanged and the error is an *model.AuthError
// of kind model.ErrAuthenticationFailed.
func (m *Manager) Login(ctx context.Context, identifier, secret string) error {
	seq := m.begin()

	result, err := m.auth.Login(ctx, identifier, secret)
	if err != nil {
		m.logger.Info("login rejected", slog.String("error", err.Error()))
		return model.NewAuthError(model.ErrAuthenticationFailed, err)
	}

	return m.commit(ctx, seq, result, model.StatusAuthenticated, model.ErrAuthenticationFailed)
}

// LoginAsGuest obtains a guest token. On failure the session is unchanged
// and the error is an *model.AuthError of kind model.ErrGuestLoginFailed.
func (m *Manager) LoginAsGuest(ctx context.Context) error {
	seq := m.begin()

	result, err := m.auth.LoginAsGuest(ctx)
	if err != nil {
		m.logger.Info("guest login rejected", slog.String("error", err.Error()))
		return model.NewAuthError(model.ErrGuestLoginFailed, err)
	}

	return m.commit(ctx, seq, result, model.StatusGuest, model.ErrGuestLoginFailed)
}

// Logout clears persisted credentials and drops to unauthenticated.
// It never fails: a storage error is logged and the in-memory session is
// still cleared.
func (m *Manager) Logout(ctx context.Context) {
	m.commitMu.Lock()
	m.drop(ctx)
	m.commitMu.Unlock()

	m.logger.Info("logged out")
	m.flush()
}

// Invalidate handles a token the backend no longer accepts. It has the same
// effect as Logout, but only while token is still the current session's
// token: a rejection of an older session's token leaves a newer one alone.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	m.commitMu.Lock()
	current := m.Session()
	if !current.Status.HasToken() || token != current.Token {
		m.commitMu.Unlock()
		m.logger.Debug("ignoring rejection of a token that is not current")
		return
	}
	m.drop(ctx)
	m.commitMu.Unlock()

	m.logger.Info("session invalidated")
	m.flush()
}

// drop clears credentials and queues the unauthenticated transition.
// The caller holds commitMu.
func (m *Manager) drop(ctx context.Context) {
	next := model.Session{Status: model.StatusUnauthenticated}
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear stored credentials", slog.String("error", err.Error()))
	}
	m.set(next)
	m.enqueue(next)
}

// begin reserves a sequence number for an operation that may later commit
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// commit persists a successful auth result and transitions, unless a newer
// operation has started since seq was taken.
func (m *Manager) commit(ctx context.Context, seq uint64, result *model.AuthResult, status model.SessionStatus, kind error) error {
	if result == nil || result.Token == "" {
		return model.NewAuthError(kind, errors.New("server returned no session token"))
	}
	identity := result.Identity
	identity.IsGuest = status == model.StatusGuest

	m.commitMu.Lock()
	if m.superseded(seq) {
		m.commitMu.Unlock()
		m.logger.Debug("dropping superseded auth response", slog.String("status", string(status)))
		return model.ErrSuperseded
	}

	if err := m.store.Save(ctx, result.Token, identity); err != nil {
		m.commitMu.Unlock()
		m.logger.Error("failed to persist session", slog.String("error", err.Error()))
		return model.NewAuthError(kind, err)
	}

	next := model.Session{Status: status, Token: result.Token, User: &identity}
	m.set(next)
	m.enqueue(next)
	m.commitMu.Unlock()

	m.logger.Info("session established",
		slog.String("status", string(status)),
		slog.String("user_id", identity.ID))
	m.flush()
	return nil
}

// set replaces the session and invalidates every in-flight operation
func (m *Manager) set(next model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.session = next
}

// enqueue records a committed transition for delivery. The caller holds
// commitMu, so queue order is commit order.
func (m *Manager) enqueue(next model.Session) {
	m.notifyMu.Lock()
	m.pending = append(m.pending, next)
	m.notifyMu.Unlock()
}

// flush delivers queued transitions unless another call is already doing so,
// in which case that call delivers them after its current one.
func (m *Manager) flush() {
	m.notifyMu.Lock()
	if m.draining {
		m.notifyMu.Unlock()
		return
	}
	m.draining = true
	for len(m.pending) > 0 {
		next := m.pending[0]
		m.pending = m.pending[1:]
		m.notifyMu.Unlock()
		m.listeners.Publish(next)
		m.notifyMu.Lock()
	}
	m.draining = false
	m.notifyMu.Unlock()
}

func (m *Manager) superseded(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq != seq
}

func sessionFromCredentials(creds *model.Credentials) model.Session {
	status := model.StatusAuthenticated
	if creds.Identity != nil && creds.Identity.IsGuest {
		status = model.StatusGuest
	}
	return model.Session{Status: status, Token: creds.Token, User: creds.Identity}
}
