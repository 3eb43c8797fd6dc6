package points

import (
	"context"
	"log/slog"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/services/cache"
)

// Source fetches the user's point total
type Source interface {
	FetchPoints(ctx context.Context) (model.Points, error)
}

// Store caches the point total shown on the points display
type Store struct {
	source     Source
	collection *cache.Collection[model.Points]
}

// New creates a points store backed by source
func New(source Source, logger *slog.Logger) *Store {
	return &Store{
		source:     source,
		collection: cache.New[model.Points]("points", logger),
	}
}

// Refresh fetches the total. On failure the last known total is kept.
func (s *Store) Refresh(ctx context.Context) error {
	return s.collection.Fetch(ctx, s.source.FetchPoints)
}

// State returns the cached points total
func (s *Store) State() cache.State[model.Points] {
	return s.collection.State()
}

// Reset forgets the cached total, e.g. after logout
func (s *Store) Reset() {
	s.collection.Reset()
}

// Subscribe registers fn for points changes and returns its unsubscribe func
func (s *Store) Subscribe(fn func(cache.State[model.Points])) func() {
	return s.collection.Subscribe(fn)
}
