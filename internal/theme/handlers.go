package theme

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"calc-server/internal/handlers"
	"calc-server/internal/observability"
)

// Response is the JSON body returned by the theme endpoints.
type Response struct {
	Theme Theme `json:"theme"`
}

// RegisterRoutes mounts the theme endpoints under /theme.
func RegisterRoutes(r chi.Router, s *Service) {
	r.Route("/theme", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteJSON(w, http.StatusOK, Response{Theme: s.Current()})
		})

		r.Post("/toggle", func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := observability.LoggerWithTrace(ctx)

			next, err := s.Toggle(ctx)
			if err != nil {
				logger.Error("theme toggle failed",
					zap.Error(err),
					zap.String("request_id", observability.RequestIDFromContext(ctx)),
				)
				handlers.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}

			logger.Info("theme toggled", zap.String("theme", string(next)))
			handlers.WriteJSON(w, http.StatusOK, Response{Theme: next})
		})
	})
}
