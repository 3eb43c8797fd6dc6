package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/tourcompanion/internal/dependencies/clock"
	"github.com/mcoot/tourcompanion/internal/dependencies/random"
	"github.com/mcoot/tourcompanion/internal/devserver"
	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/devserver/content"
	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/storage"
	redisstorage "github.com/mcoot/tourcompanion/internal/storage/redis"
)

// SeedUser is an account created when the dev backend starts
type SeedUser struct {
	Identifier  string
	Secret      string
	DisplayName string
	Points      int
}

// DevServerConfig holds configuration for the dev backend
type DevServerConfig struct {
	Logger      *slog.Logger
	StorageType string
	FilePath    string
	RedisConfig *redisstorage.Config
	Accounts    accounts.Config
	SeedUsers   []SeedUser
}

// DevServer contains the wired dev backend
type DevServer struct {
	Storage  storage.Storage
	Accounts *accounts.Service
	Content  *content.Store
	Handler  http.Handler
}

// NewDevServer wires the dev backend and creates its seed accounts
func NewDevServer(ctx context.Context, cfg DevServerConfig) (*DevServer, error) {
	store, err := NewStorage(cfg.StorageType, cfg.FilePath, cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	dev, err := newDevServerWithDependencies(ctx, store, clock.New(), random.New(), cfg)
	if err != nil {
		closeIfCloser(store)
		return nil, err
	}
	return dev, nil
}

func newDevServerWithDependencies(ctx context.Context, store storage.Storage, clk clock.Clock, rnd random.Random, cfg DevServerConfig) (*DevServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	accountService := accounts.New(store, clk, rnd, cfg.Accounts, logger)
	contentStore := content.New(clk)

	for _, seed := range cfg.SeedUsers {
		identity, err := accountService.Register(ctx, seed.Identifier, seed.Secret, seed.DisplayName)
		if errors.Is(err, accounts.ErrIdentifierTaken) {
			// Persistent storage keeps accounts but content lives in memory
			identity, err = existingIdentity(ctx, accountService, seed)
			logger.Info("seed user already exists", slog.String("identifier", seed.Identifier))
		}
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", seed.Identifier, err)
		}
		contentStore.SeedDemo(identity.ID)
		if seed.Points > 0 {
			contentStore.AddPoints(identity.ID, seed.Points)
		}
	}

	return &DevServer{
		Storage:  store,
		Accounts: accountService,
		Content:  contentStore,
		Handler: devserver.NewRouter(devserver.RouterConfig{
			Logger:   logger,
			Accounts: accountService,
			Content:  contentStore,
		}),
	}, nil
}

// Close releases backend connections
func (d *DevServer) Close() error {
	if c, ok := d.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func existingIdentity(ctx context.Context, service *accounts.Service, seed SeedUser) (*model.Identity, error) {
	session, err := service.Login(ctx, seed.Identifier, seed.Secret)
	if err != nil {
		return nil, err
	}
	service.InvalidateSession(session.Token)
	return &session.Identity, nil
}
