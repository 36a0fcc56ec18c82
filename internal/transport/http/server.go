package http

import (
	"log/slog"
	"net/http"
)

// NewServer создает роутер API архива с middleware логирования и request id.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/entries", h.getEntries)
	mux.HandleFunc("/api/health", h.healthCheck)
	var handler http.Handler = mux
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware(handler)
	return handler
}
