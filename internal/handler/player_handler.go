package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/bf4stats/api/internal/service"
)

const playerNotFound = "Player not found"

// PlayerHandler handles /api/player/{platform}/{name}/*.
type PlayerHandler struct {
	svc service.PlayerService
}

// NewPlayerHandler creates a PlayerHandler.
func NewPlayerHandler(svc service.PlayerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

// Summary handles GET /api/player/{platform}/{name}/summary.
func (h *PlayerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, h.svc.Summary)
}

// Full handles GET /api/player/{platform}/{name}/full.
func (h *PlayerHandler) Full(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, h.svc.Full)
}

// History handles GET /api/player/{platform}/{name}/history.
func (h *PlayerHandler) History(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, h.svc.History)
}

type lookupFunc func(ctx context.Context, platform, name string) (json.RawMessage, error)

func (h *PlayerHandler) relay(w http.ResponseWriter, r *http.Request, lookup lookupFunc) {
	platform := pathParam(r, "platform")
	name := pathParam(r, "name")

	data, err := lookup(r.Context(), platform, name)
	if err != nil {
		// The service logs upstream failures; every error here means no data.
		writeDetail(w, http.StatusNotFound, playerNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write player payload", "error", err)
	}
}

// pathParam returns a decoded URL parameter. chi matches against RawPath when
// the request path carried escapes such as %2F, leaving those values encoded.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
