package handler

import (
	"context"
	"net/http"

	"github.com/gct-et/assistant/internal/middleware"
	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
)

// Assistant provides the auxiliary operations on a reply.
type Assistant interface {
	Translate(ctx context.Context, text, language string) (string, bool)
	Speak(ctx context.Context, text string) (*model.Speech, bool)
}

// AssistHandler handles translation and speech endpoints.
type AssistHandler struct {
	assistant Assistant
	logger    *logger.Logger
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(assistant Assistant, log *logger.Logger) *AssistHandler {
	return &AssistHandler{
		assistant: assistant,
		logger:    log,
	}
}

// Translate handles POST /api/v1/translate
func (h *AssistHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req model.TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateLanguage(req.Language); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	translation, ok := h.assistant.Translate(r.Context(), req.Text, req.Language)
	if !ok {
		writeError(w, http.StatusBadGateway, "translation failed")
		return
	}

	writeJSON(w, http.StatusOK, &model.TranslateResponse{
		Translation: translation,
		Language:    req.Language,
	})
}

// Speech handles POST /api/v1/speech
func (h *AssistHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req model.SpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	speech, ok := h.assistant.Speak(r.Context(), req.Text)
	if !ok {
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	writeJSON(w, http.StatusOK, speech)
}
