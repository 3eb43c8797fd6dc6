package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/storage"
)

// Keys under which credentials are persisted
const (
	TokenKey    = "sessionToken"
	IdentityKey = "userIdentity"
)

// Store persists the session token and user identity. It has no logic beyond
// get, set and clear; the session manager decides what the values mean.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a credential store on top of a key/value backend
func New(storage storage.Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger.With(slog.String("component", "credential")),
	}
}

// Load returns the persisted credentials, or nil when no token is stored.
// An unreadable identity is dropped; the token alone still counts.
func (s *Store) Load(ctx context.Context) (*model.Credentials, error) {
	token, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	creds := &model.Credentials{Token: token}

	raw, err := s.storage.Get(ctx, IdentityKey)
	switch {
	case errors.Is(err, model.ErrKeyNotFound):
		return creds, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read user identity: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Warn("discarding unreadable stored identity", slog.String("error", err.Error()))
		return creds, nil
	}
	creds.Identity = &identity
	return creds, nil
}

// Save persists token and identity in one write
func (s *Store) Save(ctx context.Context, token string, identity model.Identity) error {
	if token == "" {
		return errors.New("refusing to persist an empty session token")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode user identity: %w", err)
	}

	if err := s.storage.SetAll(ctx, map[string]string{
		TokenKey:    token,
		IdentityKey: string(data),
	}); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

// Clear removes both the token and the identity
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, TokenKey, IdentityKey); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
