package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mcoot/tourcompanion/internal/devserver"
	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/factory"
	redisstorage "github.com/mcoot/tourcompanion/internal/storage/redis"
)

// sessionSweepInterval is how often expired sessions are dropped
const sessionSweepInterval = 10 * time.Minute

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.DevServerConfig{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		FilePath:    os.Getenv("STORAGE_FILE"),
		Accounts:    accounts.DefaultConfig(),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		redisCfg.Namespace = "tourcompanion-dev"
		cfg.RedisConfig = &redisCfg
	}

	if identifier := os.Getenv("SEED_IDENTIFIER"); identifier != "" {
		cfg.SeedUsers = append(cfg.SeedUsers, factory.SeedUser{
			Identifier:  identifier,
			Secret:      os.Getenv("SEED_SECRET"),
			DisplayName: getEnvOrDefault("SEED_DISPLAY_NAME", "Demo Traveller"),
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dev, err := factory.NewDevServer(ctx, cfg)
	if err != nil {
		logger.Error("failed to create dev backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = dev.Close() }()

	serverConfig := devserver.DefaultServerConfig()
	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := devserver.NewServer(dev.Handler, serverConfig, logger)

	go sweepSessions(ctx, dev.Accounts, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func sweepSessions(ctx context.Context, service *accounts.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := service.CleanExpiredSessions(); n > 0 {
				logger.Info("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
