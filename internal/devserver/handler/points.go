package handler

import (
	"net/http"

	"github.com/mcoot/tourcompanion/internal/devserver/content"
	"github.com/mcoot/tourcompanion/internal/devserver/middleware"
	"github.com/mcoot/tourcompanion/internal/devserver/request"
	"github.com/mcoot/tourcompanion/internal/devserver/response"
)

// PointsHandler serves the user's point total
type PointsHandler struct {
	content *content.Store
}

// NewPointsHandler creates a new PointsHandler
func NewPointsHandler(store *content.Store) *PointsHandler {
	return &PointsHandler{content: store}
}

// Get handles GET /api/v1/points
func (h *PointsHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, h.content.Points(identity.ID))
}

// Award handles POST /api/v1/points
func (h *PointsHandler) Award(w http.ResponseWriter, r *http.Request) {
	var req request.AwardPointsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Points <= 0 {
		WriteError(w, NewInvalidRequestError("points must be positive"))
		return
	}

	identity := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, h.content.AddPoints(identity.ID, req.Points))
}
