package notify

import (
	"log/slog"
	"sync"
)

// Listener receives a snapshot after every change of the observed state
type Listener[T any] func(T)

// Broadcaster fans state snapshots out to registered listeners.
// Listeners run synchronously on the publishing goroutine, in registration
// order, and must not block. A panicking listener is logged and skipped so
// one bad observer cannot break the publisher.
type Broadcaster[T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]Listener[T]
	order     []uint64
	nextID    uint64
	logger    *slog.Logger
}

// New creates a Broadcaster. component is attached to log records.
func New[T any](logger *slog.Logger, component string) *Broadcaster[T] {
	return &Broadcaster[T]{
		listeners: make(map[uint64]Listener[T]),
		logger:    logger.With(slog.String("component", component)),
	}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Broadcaster[T]) Subscribe(fn Listener[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.order = append(b.order, id)
	count := len(b.listeners)
	b.mu.Unlock()

	b.logger.Debug("listener registered", slog.Int("total_listeners", count))

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Broadcaster[T]) unsubscribe(id uint64) {
	b.mu.Lock()
	delete(b.listeners, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	count := len(b.listeners)
	b.mu.Unlock()

	b.logger.Debug("listener unregistered", slog.Int("total_listeners", count))
}

// Publish delivers snapshot to every listener registered at call time
func (b *Broadcaster[T]) Publish(snapshot T) {
	b.mu.RLock()
	targets := make([]Listener[T], 0, len(b.order))
	for _, id := range b.order {
		targets = append(targets, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, fn := range targets {
		b.deliver(fn, snapshot)
	}
}

func (b *Broadcaster[T]) deliver(fn Listener[T], snapshot T) {
	defer func() {
		if err := recover(); err != nil {
			b.logger.Error("listener panicked", slog.Any("error", err))
		}
	}()
	fn(snapshot)
}

// Count returns the number of registered listeners
func (b *Broadcaster[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
