package model

import "time"

// QuestID identifies a quest
type QuestID int

// Quest is a selectable item in the quest planner. Identity is ID only.
type Quest struct {
	ID       QuestID `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Points   int     `json:"points,omitempty"`
}

// Points is the user's accumulated point total
type Points struct {
	Total int `json:"total"`
}

// ChatSession is one entry in the chat history list
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is a single message within a chat session
type ChatMessage struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// ChatSessionDetail is a chat session with its messages
type ChatSessionDetail struct {
	ChatSession
	Messages []ChatMessage `json:"messages"`
}

// ChatFilter narrows the chat history list
type ChatFilter struct {
	Query string
	Limit int // 0 means server default
}
