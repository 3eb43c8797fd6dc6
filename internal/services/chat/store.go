package chat

import (
	"context"
	"log/slog"

	"github.com/mcoot/tourcompanion/internal/model"
	"github.com/mcoot/tourcompanion/internal/services/cache"
)

// Source fetches chat history
type Source interface {
	FetchChatList(ctx context.Context, filter model.ChatFilter) ([]model.ChatSession, error)
	FetchChatSession(ctx context.Context, id string) (*model.ChatSessionDetail, error)
}

// Store caches the chat history list and the currently open session.
// The two are independent: clearing the current session leaves the list.
type Store struct {
	source  Source
	list    *cache.Collection[[]model.ChatSession]
	current *cache.Collection[*model.ChatSessionDetail]
}

// New creates a chat store backed by source
func New(source Source, logger *slog.Logger) *Store {
	return &Store{
		source:  source,
		list:    cache.New[[]model.ChatSession]("chat-list", logger),
		current: cache.New[*model.ChatSessionDetail]("chat-current", logger),
	}
}

// FetchList refreshes the history list
func (s *Store) FetchList(ctx context.Context, filter model.ChatFilter) error {
	return s.list.Fetch(ctx, func(ctx context.Context) ([]model.ChatSession, error) {
		return s.source.FetchChatList(ctx, filter)
	})
}

// FetchSession loads one session into the current slot
func (s *Store) FetchSession(ctx context.Context, id string) error {
	return s.current.Fetch(ctx, func(ctx context.Context) (*model.ChatSessionDetail, error) {
		return s.source.FetchChatSession(ctx, id)
	})
}

// ClearCurrent empties the current session slot
func (s *Store) ClearCurrent() {
	s.current.Reset()
}

// Reset forgets both the list and the current session
func (s *Store) Reset() {
	s.list.Reset()
	s.current.Reset()
}

// List returns the cached chat session list
func (s *Store) List() cache.State[[]model.ChatSession] {
	return s.list.State()
}

// Current returns the cached detail of the selected session
func (s *Store) Current() cache.State[*model.ChatSessionDetail] {
	return s.current.State()
}

// SubscribeList registers fn for list changes and returns its unsubscribe func
func (s *Store) SubscribeList(fn func(cache.State[[]model.ChatSession])) func() {
	return s.list.Subscribe(fn)
}

// SubscribeCurrent registers fn for changes to the selected session and returns its unsubscribe func
func (s *Store) SubscribeCurrent(fn func(cache.State[*model.ChatSessionDetail])) func() {
	return s.current.Subscribe(fn)
}
