package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/tourcompanion/internal/devserver/content"
	"github.com/mcoot/tourcompanion/internal/devserver/middleware"
	"github.com/mcoot/tourcompanion/internal/devserver/response"
	"github.com/mcoot/tourcompanion/internal/model"
)

// ChatHandler serves chat history
type ChatHandler struct {
	content *content.Store
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(store *content.Store) *ChatHandler {
	return &ChatHandler{content: store}
}

// List handles GET /api/v1/chat/sessions?q=&limit=
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ChatFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	identity := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.ChatList{Sessions: h.content.ListChats(identity.ID, filter)})
}

// Get handles GET /api/v1/chat/sessions/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())

	detail, err := h.content.GetChat(identity.ID, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, detail)
}
