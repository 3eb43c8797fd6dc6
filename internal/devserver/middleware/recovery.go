package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/tourcompanion/internal/devserver/apierr"
	"github.com/mcoot/tourcompanion/internal/middleware"
)

// Recovery writes a JSON internal error when a handler panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
