package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// CredentialTTL expires stored credentials; zero keeps them until logout
	CredentialTTL time.Duration

	// Namespace separates credentials of different devices sharing one server
	Namespace string
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      4,
		MinIdleConns:  1,
		CredentialTTL: 0,
		Namespace:     "default",
	}
}
