package devserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tourcompanion/internal/devserver/accounts"
	"github.com/mcoot/tourcompanion/internal/devserver/apierr"
	"github.com/mcoot/tourcompanion/internal/devserver/content"
	"github.com/mcoot/tourcompanion/internal/devserver/handler"
	"github.com/mcoot/tourcompanion/internal/devserver/middleware"
	"github.com/mcoot/tourcompanion/internal/devserver/response"
	commonmw "github.com/mcoot/tourcompanion/internal/middleware"
)

// RouterConfig holds the dependencies of the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *accounts.Service
	Content  *content.Store
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.Accounts, cfg.Content)
	pointsHandler := handler.NewPointsHandler(cfg.Content)
	chatHandler := handler.NewChatHandler(cfg.Content)

	authMiddleware := middleware.Auth(cfg.Accounts)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(commonmw.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	// Session issuing routes need no token
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/guest", authHandler.Guest).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/points", pointsHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/points", pointsHandler.Award).Methods(http.MethodPost)
	protected.HandleFunc("/chat/sessions", chatHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/chat/sessions/{id}", chatHandler.Get).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
