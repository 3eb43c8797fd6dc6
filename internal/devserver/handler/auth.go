package handler

import (
	"net/http"

	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/devserver/content"
	"github.com/mcoot/tourcompanion/internal/devserver/middleware"
	"github.com/mcoot/tourcompanion/internal/devserver/request"
	"github.com/mcoot/tourcompanion/internal/devserver/response"
)

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	accounts *accounts.Service
	content  *content.Store
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accountService *accounts.Service, store *content.Store) *AuthHandler {
	return &AuthHandler{
		accounts: accountService,
		content:  store,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Identifier == "" {
		WriteError(w, NewInvalidRequestError("identifier is required"))
		return
	}
	if req.Secret == "" {
		WriteError(w, NewInvalidRequestError("secret is required"))
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Guest handles POST /api/v1/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	session, err := h.accounts.CreateGuest(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	h.content.SeedDemo(session.Identity.ID)

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Identifier == "" {
		WriteError(w, NewInvalidRequestError("identifier is required"))
		return
	}
	if req.Secret == "" {
		WriteError(w, NewInvalidRequestError("secret is required"))
		return
	}

	identity, err := h.accounts.Register(r.Context(), req.Identifier, req.Secret, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.content.SeedDemo(identity.ID)

	session, err := h.accounts.Login(r.Context(), req.Identifier, req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, middleware.MustGetIdentity(r.Context()))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.accounts.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}
