package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/digit", h.Digit)
		r.Post("/operator", h.Operator)
		r.Post("/delete", h.Delete)
		r.Post("/clear", h.Clear)
		r.Post("/equals", h.Equals)
		r.Post("/compute", h.Compute)
		r.Post("/evaluate", h.Evaluate)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.History)
			r.Delete("/", h.ClearHistory)
			r.Post("/next", h.NextPage)
			r.Post("/prev", h.PrevPage)
			r.Delete("/{id}", h.DeleteHistoryEntry)
		})
	})
}
