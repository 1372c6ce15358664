package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"calc-server/internal/calculator"
	"calc-server/internal/handlers"
	"calc-server/internal/observability"
	"calc-server/internal/theme"
	"calc-server/internal/web"
)

// Deps are the domain services the router exposes.
type Deps struct {
	Calculator *calculator.Machine
	Theme      *theme.Service
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(deps.Calculator))
	theme.RegisterRoutes(r, deps.Theme)

	r.Handle("/", web.Handler())

	return r
}
