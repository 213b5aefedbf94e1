package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gct-et/assistant/internal/middleware"
	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/internal/service"
	"github.com/gct-et/assistant/pkg/logger"
)

// MessageHandler handles turn endpoints.
type MessageHandler struct {
	messageService      *service.MessageService
	conversationService *service.ConversationService
	logger              *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(
	msgSvc *service.MessageService,
	convSvc *service.ConversationService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageService:      msgSvc,
		conversationService: convSvc,
		logger:              log,
	}
}

// List handles GET /api/v1/conversations/:id/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	turns, status, err := h.conversationService.Turns(ctx, middleware.GetUserID(ctx), conversationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, &model.ListTurnsResponse{
		Turns:  turns,
		Status: status,
	})
}

// Submit handles POST /api/v1/conversations/:id/messages. It responds once
// the turn settles; an ignored submission answers 202.
func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SubmitTurnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidatePrompt(req.Prompt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateAttachments(req.Attachments); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A client disconnect must not strand the conversation in thinking.
	resp, err := h.messageService.Submit(context.WithoutCancel(ctx), middleware.GetUserID(ctx), conversationID, &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if resp.Ignored {
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}
