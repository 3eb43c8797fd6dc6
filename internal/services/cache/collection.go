package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/tourcompanion/internal/notify"
)

// State is a snapshot of a remote collection
type State[T any] struct {
	Data      T
	IsLoading bool
	// Error is the message of the last failed fetch, or "" after a success
	Error string
}

// FetchFunc performs the remote call for one fetch
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Collection caches the result of a remote fetch.
//
// Overlapping fetches are allowed and the last request wins: every Fetch
// takes a sequence number and only the response of the most recent call is
// applied. A failed fetch keeps the previous data.
type Collection[T any] struct {
	mu    sync.Mutex
	state State[T]
	seq   uint64

	logger    *slog.Logger
	listeners *notify.Broadcaster[State[T]]
}

// New creates an empty collection. name is attached to log records.
func New[T any](name string, logger *slog.Logger) *Collection[T] {
	logger = logger.With(slog.String("component", "cache"), slog.String("collection", name))
	return &Collection[T]{
		logger:    logger,
		listeners: notify.New[State[T]](logger, name+"-listeners"),
	}
}

// State returns a snapshot of the collection
func (c *Collection[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fetch runs fn and applies its result unless a newer Fetch, Set or Reset
// happened meanwhile. The returned error is fn's error, whether or not it
// was applied.
func (c *Collection[T]) Fetch(ctx context.Context, fn FetchFunc[T]) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.IsLoading = true
	c.state.Error = ""
	started := c.state
	c.mu.Unlock()
	c.listeners.Publish(started)

	data, err := fn(ctx)

	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		c.logger.Debug("dropping stale response", slog.Uint64("seq", seq))
		return err
	}
	c.state.IsLoading = false
	if err != nil {
		c.state.Error = err.Error()
	} else {
		c.state.Data = data
	}
	done := c.state
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("fetch failed", slog.String("error", err.Error()))
	}
	c.listeners.Publish(done)
	return err
}

// Set replaces the data directly and supersedes any fetch in flight
func (c *Collection[T]) Set(data T) {
	c.mu.Lock()
	c.seq++
	c.state = State[T]{Data: data}
	next := c.state
	c.mu.Unlock()
	c.listeners.Publish(next)
}

// Reset returns the collection to its zero state and supersedes any fetch
// in flight
func (c *Collection[T]) Reset() {
	var zero T
	c.Set(zero)
}

// Subscribe registers fn for every state change
func (c *Collection[T]) Subscribe(fn func(State[T])) func() {
	return c.listeners.Subscribe(fn)
}
