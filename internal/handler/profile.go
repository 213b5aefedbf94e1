package handler

import (
	"net/http"

	"github.com/gct-et/assistant/internal/middleware"
	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/internal/service"
	"github.com/gct-et/assistant/pkg/logger"
)

// ProfileHandler handles engineer profile endpoints.
type ProfileHandler struct {
	service *service.ProfileService
	logger  *logger.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(svc *service.ProfileService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: svc,
		logger:  log,
	}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.service.Get(ctx, middleware.GetUserID(ctx))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Put handles PUT /api/v1/profile
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.Profile
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateProfile(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.Sync(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Delete handles DELETE /api/v1/profile
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.service.Reset(ctx, middleware.GetUserID(ctx))
	w.WriteHeader(http.StatusNoContent)
}
