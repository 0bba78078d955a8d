package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-director/pkg/director"
)

// Resolver is the part of the director the resolve endpoints need.
type Resolver interface {
	Resolve(ctx context.Context, req director.Request) (*director.EventResult, error)
	Preview(ctx context.Context, req director.Request) (*director.EventResult, error)
}

// ResolveRequest is the body of POST /v1/resolve and POST /v1/preview
type ResolveRequest struct {
	WorldID    string `json:"world_id"`
	StoryletID string `json:"storylet_id"`
	ChoiceID   string `json:"choice_id"`
}

type ResolveHandler struct {
	director Resolver
	logger   *slog.Logger
	preview  bool
}

// NewResolveHandler serves POST /v1/resolve, which applies the choice.
func NewResolveHandler(d Resolver, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{director: d, logger: logger}
}

// NewPreviewHandler serves POST /v1/preview, which only reports the cast.
func NewPreviewHandler(d Resolver, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{director: d, logger: logger, preview: true}
}

func (h *ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for resolve endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	req, msg := decodeResolveRequest(r)
	if msg != "" {
		writeError(w, h.logger, http.StatusBadRequest, msg)
		return
	}

	var (
		result *director.EventResult
		err    error
	)
	if h.preview {
		result, err = h.director.Preview(r.Context(), req)
	} else {
		result, err = h.director.Resolve(r.Context(), req)
	}

	if err != nil {
		var resErr *director.ResolutionError
		switch {
		case errors.As(err, &resErr):
			writeJSON(w, h.logger, http.StatusUnprocessableEntity, ErrorResponse{
				Error:         resErr.Explanation(),
				UnfilledRoles: resErr.UnfilledRoles,
			})
		case errors.Is(err, director.ErrNotFound):
			writeError(w, h.logger, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("Failed to resolve choice",
				"error", err,
				"world_id", req.WorldID,
				"storylet_id", req.StoryletID,
				"choice_id", req.ChoiceID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to resolve choice")
		}
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

// decodeResolveRequest returns the parsed request, or a client-facing message.
func decodeResolveRequest(r *http.Request) (director.Request, string) {
	var body ResolveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return director.Request{}, "Invalid JSON in request body"
	}

	worldID, err := uuid.Parse(strings.TrimSpace(body.WorldID))
	if err != nil || worldID == uuid.Nil {
		return director.Request{}, "world_id must be a valid UUID"
	}
	storyletID := strings.TrimSpace(body.StoryletID)
	if storyletID == "" {
		return director.Request{}, "storylet_id is required"
	}
	choiceID := strings.TrimSpace(body.ChoiceID)
	if choiceID == "" {
		return director.Request{}, "choice_id is required"
	}

	return director.Request{WorldID: worldID, StoryletID: storyletID, ChoiceID: choiceID}, ""
}
