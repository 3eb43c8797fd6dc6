package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tourcompanion/internal/dependencies/clock"
	"github.com/mcoot/tourcompanion/internal/dependencies/random"
	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrIdentifierTaken    = errors.New("identifier already registered")
)

var (
	guestAdjectives = []string{"Wandering", "Curious", "Roaming", "Intrepid", "Leisurely", "Sunny"}
	guestNouns      = []string{"Traveller", "Explorer", "Tourist", "Wayfarer", "Visitor"}
)

// Session is an issued bearer token
type Session struct {
	Token     string
	Identity  model.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// user is the persisted account record
type user struct {
	Identity     model.Identity `json:"identity"`
	PasswordHash string         `json:"password_hash"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Service registers accounts, checks credentials and issues sessions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	bcryptCost      int
}

// Config holds configuration for the accounts service
type Config struct {
	SessionDuration time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it
	BcryptCost int
}

// DefaultConfig returns the default account settings
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates an account service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage:         store,
		clock:           clk,
		random:          rnd,
		logger:          logger.With(slog.String("component", "accounts")),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		bcryptCost:      cfg.BcryptCost,
	}
}

// Register creates an account. The identifier is matched case-insensitively.
func (s *Service) Register(ctx context.Context, identifier, secret, displayName string) (*model.Identity, error) {
	key := userKey(identifier)
	if _, err := s.storage.Get(ctx, key); err == nil {
		return nil, ErrIdentifierTaken
	} else if !errors.Is(err, model.ErrKeyNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	if displayName == "" {
		displayName = identifier
	}
	u := user{
		Identity: model.Identity{
			ID:          "u_" + uuid.NewString(),
			DisplayName: displayName,
			Email:       strings.TrimSpace(identifier),
		},
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}
	if err := s.storage.SetAll(ctx, map[string]string{key: string(data)}); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("user_id", u.Identity.ID))
	return &u.Identity, nil
}

// Login checks credentials and issues a session
func (s *Service) Login(ctx context.Context, identifier, secret string) (*Session, error) {
	raw, err := s.storage.Get(ctx, userKey(identifier))
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	var u user
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(u.Identity), nil
}

// CreateGuest issues a session for a new anonymous identity
func (s *Service) CreateGuest(_ context.Context) (*Session, error) {
	identity := model.Identity{
		ID: "g_" + uuid.NewString(),
		DisplayName: fmt.Sprintf("%s %s %d",
			s.random.Choice(guestAdjectives),
			s.random.Choice(guestNouns),
			100+s.random.Intn(900)),
		IsGuest: true,
	}
	return s.createSession(identity), nil
}

// ValidateSession returns the session for token if it has not expired
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.InvalidateSession(token)
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions removes expired sessions and returns how many
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

func (s *Service) createSession(identity model.Identity) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     "sess_" + uuid.NewString(),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	s.logger.Debug("session issued",
		slog.String("user_id", identity.ID),
		slog.Bool("guest", identity.IsGuest))
	return session
}

func userKey(identifier string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(identifier))
}
