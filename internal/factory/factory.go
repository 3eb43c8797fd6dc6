package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/tourcompanion/internal/dependencies/clock"
	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/remote"
	"github.com/mcoot/tourcompanion/internal/services/chat"
	"github.com/mcoot/tourcompanion/internal/services/credential"
	"github.com/mcoot/tourcompanion/internal/services/planner"
	"github.com/mcoot/tourcompanion/internal/services/points"
	"github.com/mcoot/tourcompanion/internal/services/routeguard"
	"github.com/mcoot/tourcompanion/internal/services/session"
	"github.com/mcoot/tourcompanion/internal/services/stamps"
	"github.com/mcoot/tourcompanion/internal/storage"
	filestorage "github.com/mcoot/tourcompanion/internal/storage/file"
	"github.com/mcoot/tourcompanion/internal/storage/memory"
	redisstorage "github.com/mcoot/tourcompanion/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	Storage storage.Storage
	Clock   clock.Clock
	Logger  *slog.Logger

	Remote      *remote.Client
	Credentials *credential.Store
	Session     *session.Manager
	Planner     *planner.Planner
	Points      *points.Store
	Chat        *chat.Store
	Stamps      *stamps.Tracker
	Rules       routeguard.Rules

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the credential backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// FilePath is the credentials file (required if StorageType is "file")
	FilePath string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// ServerURL is the base URL of the remote API
	ServerURL string
	// HTTPClient replaces the remote client's default (optional)
	HTTPClient *http.Client

	// PlannerCapacity defaults to planner.DefaultCapacity
	PlannerCapacity int
	// StampCodes defaults to stamps.DefaultCodes
	StampCodes []string
	// StampCooldown defaults to stamps.DefaultCooldown; negative disables it
	StampCooldown time.Duration
	// Rules defaults to routeguard.DefaultRules()
	Rules *routeguard.Rules
}

// NewStorage builds the storage backend selected by storageType
func NewStorage(storageType, filePath string, redisCfg *redisstorage.Config) (storage.Storage, error) {
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		if filePath == "" {
			return nil, errors.New("FilePath required when StorageType is file")
		}
		return filestorage.New(filePath), nil
	case StorageTypeRedis:
		if redisCfg == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*redisCfg)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'file' or 'redis'", storageType)
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	store, err := NewStorage(cfg.StorageType, cfg.FilePath, cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	app, err := newWithDependencies(store, clock.New(), cfg)
	if err != nil {
		closeIfCloser(store)
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	capacity := cfg.PlannerCapacity
	if capacity == 0 {
		capacity = planner.DefaultCapacity
	}
	plan, err := planner.New(capacity, logger)
	if err != nil {
		return nil, err
	}

	codes := cfg.StampCodes
	if len(codes) == 0 {
		codes = stamps.DefaultCodes
	}
	registry, err := stamps.NewRegistry(codes)
	if err != nil {
		return nil, err
	}
	cooldown := cfg.StampCooldown
	if cooldown == 0 {
		cooldown = stamps.DefaultCooldown
	}

	rules := routeguard.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}

	// The client reads the token from the manager per request, and the
	// manager authenticates through the client
	var manager *session.Manager
	client := remote.NewClient(cfg.ServerURL, remote.TokenFunc(func() string { return manager.Token() }), logger)
	if cfg.HTTPClient != nil {
		client.WithHTTPClient(cfg.HTTPClient)
	}

	creds := credential.New(store, logger)
	manager = session.New(creds, client, logger)
	client.OnUnauthorized = manager.Invalidate

	app := &App{
		Storage:     store,
		Clock:       clk,
		Logger:      logger,
		Remote:      client,
		Credentials: creds,
		Session:     manager,
		Planner:     plan,
		Points:      points.New(client, logger),
		Chat:        chat.New(client, logger),
		Stamps:      stamps.New(registry, clk, cooldown, logger),
		Rules:       rules,
	}
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	// Cached remote data belongs to the token it was fetched with. Resetting
	// also supersedes fetches still in flight for the previous token.
	var lastToken string
	manager.Subscribe(func(s model.Session) {
		if s.Token == lastToken {
			return
		}
		lastToken = s.Token
		app.Points.Reset()
		app.Chat.Reset()
	})

	return app, nil
}

// Start resolves the persisted session
func (a *App) Start(ctx context.Context) error {
	return a.Session.LoadStoredSession(ctx)
}

// NewWatcher attaches a route guard watcher to the session
func (a *App) NewWatcher(navigator routeguard.Navigator) *routeguard.Watcher {
	return routeguard.NewWatcher(a.Session, a.Rules, navigator, a.Logger)
}

// Close releases backend connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}
