package response

import (
	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/model"
)

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Token string         `json:"token"`
	User  model.Identity `json:"user"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *accounts.Session) AuthResponse {
	return AuthResponse{
		Token: s.Token,
		User:  s.Identity,
	}
}

// ChatList is the response for the chat history list
type ChatList struct {
	Sessions []model.ChatSession `json:"sessions"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
