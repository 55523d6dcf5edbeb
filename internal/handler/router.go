package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every route behind the common middleware stack.
func NewRouter(h *Handler, players *PlayerHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(h.CORS)

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api/player/{platform}/{name}", func(r chi.Router) {
		r.Get("/summary", players.Summary)
		r.Get("/full", players.Full)
		r.Get("/history", players.History)
	})

	return r
}
