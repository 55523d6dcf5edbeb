package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
)

// corsMethods mirrors the method list a wildcard policy expands to.
const corsMethods = "DELETE, GET, HEAD, OPTIONS, PATCH, POST, PUT"

// Handler serves the static endpoints and applies the CORS policy.
type Handler struct {
	allowedOrigins []string
}

// New creates a Handler. An origin list containing "*" allows every origin.
func New(allowedOrigins []string) *Handler {
	return &Handler{allowedOrigins: allowedOrigins}
}

func (h *Handler) allowAll() bool {
	return slices.Contains(h.allowedOrigins, "*")
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		origin := r.Header.Get("Origin")

		credentials := false
		switch {
		case origin != "" && (h.allowAll() || slices.Contains(h.allowedOrigins, origin)):
			// A literal "*" cannot be combined with credentials, so echo the origin.
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
			credentials = true
		case origin == "" && h.allowAll():
			header.Set("Access-Control-Allow-Origin", "*")
		}

		header.Set("Access-Control-Allow-Methods", corsMethods)
		// Browsers read "*" literally on credentialed requests.
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			header.Set("Access-Control-Allow-Headers", reqHeaders)
		} else if !credentials {
			header.Set("Access-Control-Allow-Headers", "*")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// NotFound answers unknown routes with a JSON detail body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
