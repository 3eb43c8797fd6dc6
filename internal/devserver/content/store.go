package content

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/tourcompanion/internal/dependencies/clock"
	"github.com/mcoot/tourcompanion/internal/model"
)

// ErrChatNotFound is returned for an unknown or foreign chat session
var ErrChatNotFound = errors.New("chat session not found")

// DefaultChatLimit applies when a list request gives no limit
const DefaultChatLimit = 20

// Store holds per-user points and chat history for the dev backend
type Store struct {
	clock clock.Clock

	mu     sync.RWMutex
	points map[string]int
	chats  map[string][]model.ChatSessionDetail
}

// New creates an empty content store
func New(clk clock.Clock) *Store {
	return &Store{
		clock:  clk,
		points: make(map[string]int),
		chats:  make(map[string][]model.ChatSessionDetail),
	}
}

// Points returns the total held by userID
func (s *Store) Points(userID string) model.Points {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Points{Total: s.points[userID]}
}

// AddPoints adds delta to the user's total and returns the new total
func (s *Store) AddPoints(userID string, delta int) model.Points {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[userID] += delta
	return model.Points{Total: s.points[userID]}
}

// AddChat records a chat session for the user and returns it
func (s *Store) AddChat(userID, title string, messages ...model.ChatMessage) model.ChatSessionDetail {
	now := s.clock.Now()
	detail := model.ChatSessionDetail{
		ChatSession: model.ChatSession{
			ID:        "chat_" + uuid.NewString(),
			Title:     title,
			UpdatedAt: now,
		},
		Messages: slices.Clone(messages),
	}

	s.mu.Lock()
	s.chats[userID] = append(s.chats[userID], detail)
	s.mu.Unlock()
	return detail
}

// ListChats returns the user's sessions, newest first. Query matches titles
// case-insensitively.
func (s *Store) ListChats(userID string, filter model.ChatFilter) []model.ChatSession {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.RLock()
	sessions := make([]model.ChatSession, 0, len(s.chats[userID]))
	for _, chat := range s.chats[userID] {
		if query == "" || strings.Contains(strings.ToLower(chat.Title), query) {
			sessions = append(sessions, chat.ChatSession)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(sessions, func(a, b model.ChatSession) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions
}

// GetChat returns one of the user's sessions with its messages
func (s *Store) GetChat(userID, chatID string) (*model.ChatSessionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chat := range s.chats[userID] {
		if chat.ID == chatID {
			detail := chat
			detail.Messages = slices.Clone(chat.Messages)
			return &detail, nil
		}
	}
	return nil, ErrChatNotFound
}

// SeedDemo gives a new user some starting data
func (s *Store) SeedDemo(userID string) {
	s.mu.RLock()
	_, seeded := s.chats[userID]
	s.mu.RUnlock()
	if seeded {
		return
	}

	now := s.clock.Now()
	s.AddPoints(userID, 50)
	s.AddChat(userID, "Welcome to the old town",
		model.ChatMessage{Role: "user", Content: "What should I see first?", SentAt: now},
		model.ChatMessage{Role: "assistant", Content: "Start at the clock tower, then follow the stamp trail.", SentAt: now},
	)
}
