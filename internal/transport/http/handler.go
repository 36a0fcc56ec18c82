package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"greader/feed"
	"greader/reader"
)

const defaultLimit = 20

type entriesGetter interface {
	GetEntries(ctx context.Context, category reader.Category, limit int) ([]feed.Entry, error)
}

type Handler struct {
	log           *slog.Logger
	entriesGetter entriesGetter
}

func NewHandler(log *slog.Logger, getter entriesGetter) *Handler {
	return &Handler{
		log:           log,
		entriesGetter: getter,
	}
}

// getEntries - хендлер для эндпоинта GET /api/entries?category=<c>&limit=<n>
func (h *Handler) getEntries(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getEntries"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", requestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed")
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	q := r.URL.Query()
	category := reader.CategoryStarred
	if raw := q.Get("category"); raw != "" {
		c, err := reader.ParseCategory(raw)
		if err != nil {
			log.Warn("invalid category parameter", slog.String("category", raw))
			respondWithError(w, http.StatusBadRequest, "Invalid 'category' parameter")
			return
		}
		category = c
	}
	limit := defaultLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}

	entries, err := h.entriesGetter.GetEntries(r.Context(), category, limit)
	if err != nil {
		log.Error("Failed to get entries", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if entries == nil {
		entries = []feed.Entry{}
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
