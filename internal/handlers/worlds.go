package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/storage"
	"github.com/jwebster45206/story-director/pkg/world"
)

// WorldNotifier is told about newly created worlds. It is optional.
type WorldNotifier interface {
	PublishWorldCreated(ctx context.Context, worldID uuid.UUID, npcCount int) error
}

// CreateWorldRequest defines the request body for creating a new world
type CreateWorldRequest struct {
	Seed uint64            `json:"seed,omitempty"` // Optional: random when zero
	Vars map[string]string `json:"vars,omitempty"`
	NPCs []world.NPC       `json:"npcs"`
}

type WorldHandler struct {
	storage  storage.Storage
	notifier WorldNotifier
	logger   *slog.Logger
}

func NewWorldHandler(logger *slog.Logger, storage storage.Storage, notifier WorldNotifier) *WorldHandler {
	return &WorldHandler{
		storage:  storage,
		notifier: notifier,
		logger:   logger,
	}
}

// ServeHTTP handles HTTP requests for world operations
// Routes:
// POST /v1/worlds        - Create a world
// GET /v1/worlds/{id}    - Read a world by ID
// DELETE /v1/worlds/{id} - Delete a world by ID
func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/worlds"), "/")
	var worldID uuid.UUID
	if path != "" {
		id, err := uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid world ID", "id", path, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid world ID format")
			return
		}
		worldID = id
	}

	switch r.Method {
	case http.MethodPost:
		if worldID != uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "POST does not take a world ID")
			return
		}
		h.handleCreate(w, r)
	case http.MethodGet:
		if worldID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "World ID is required for GET requests")
			return
		}
		h.handleRead(w, r, worldID)
	case http.MethodDelete:
		if worldID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "World ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, worldID)
	default:
		h.logger.Warn("Method not allowed for world endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *WorldHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateWorldRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	wld, err := world.New(req.Seed)
	if err != nil {
		h.logger.Error("Failed to create world", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create world")
		return
	}
	wld.SetVars(req.Vars)
	for i, npc := range req.NPCs {
		if _, dup := wld.NPCs[npc.ID]; dup {
			writeError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("npcs[%d]: duplicate id %q", i, npc.ID))
			return
		}
		if err := wld.AddNPC(npc); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("npcs[%d]: %v", i, err))
			return
		}
	}

	if err := h.storage.SaveWorld(r.Context(), wld); err != nil {
		h.logger.Error("Failed to save world", "error", err, "world_id", wld.ID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save world")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.PublishWorldCreated(r.Context(), wld.ID, len(wld.NPCs)); err != nil {
			h.logger.Warn("Failed to publish world created event", "error", err, "world_id", wld.ID)
		}
	}

	h.logger.Info("World created", "world_id", wld.ID, "npc_count", len(wld.NPCs))
	writeJSON(w, h.logger, http.StatusCreated, wld)
}

func (h *WorldHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	wld, err := h.storage.LoadWorld(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load world", "error", err, "world_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world")
		return
	}
	if wld == nil {
		writeError(w, h.logger, http.StatusNotFound, "World not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, wld)
}

func (h *WorldHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteWorld(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete world", "error", err, "world_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete world")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
