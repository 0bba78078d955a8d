package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/story-director/pkg/storage"
)

type StoryletListResponse struct {
	Storylets []string `json:"storylets"`
}

type StoryletHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewStoryletHandler(log *slog.Logger, storage storage.Storage) *StoryletHandler {
	return &StoryletHandler{
		log:     log,
		storage: storage,
	}
}

// ServeHTTP handles storylet lookups
// Routes:
// GET /v1/storylets      - List storylet IDs
// GET /v1/storylets/{id} - Read one storylet
func (h *StoryletHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/storylets"), "/")
	if id == "" {
		h.handleList(w, r)
		return
	}
	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		writeError(w, h.log, http.StatusBadRequest, "Invalid storylet ID")
		return
	}
	h.handleGet(w, r, id)
}

func (h *StoryletHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListStorylets(r.Context())
	if err != nil {
		h.log.Error("Failed to list storylets", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list storylets")
		return
	}
	writeJSON(w, h.log, http.StatusOK, StoryletListResponse{Storylets: ids})
}

func (h *StoryletHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.storage.GetStorylet(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrStoryletNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Storylet not found")
			return
		}
		h.log.Error("Failed to get storylet", "error", err, "storylet_id", id)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to retrieve storylet")
		return
	}
	writeJSON(w, h.log, http.StatusOK, s)
}
