package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
	"github.com/gct-et/assistant/pkg/metrics"
)

// DiagnosticPrompt is dispatched when a turn carries attachments but no text.
const DiagnosticPrompt = "Diagnostic analysis."

// TurnDispatcher produces the assistant's reply for one user turn.
type TurnDispatcher interface {
	Dispatch(ctx context.Context, prompt string, history []model.ContextEntry, attachments []model.Attachment) *model.DispatchResult
}

// MessageService handles turn submission.
type MessageService struct {
	conversationService *ConversationService
	dispatcher          TurnDispatcher
	contextWindow       int
	logger              *logger.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(
	conversationService *ConversationService,
	dispatcher TurnDispatcher,
	contextWindow int,
	log *logger.Logger,
) *MessageService {
	if contextWindow <= 0 {
		contextWindow = 10
	}
	return &MessageService{
		conversationService: conversationService,
		dispatcher:          dispatcher,
		contextWindow:       contextWindow,
		logger:              log.Named("messages"),
	}
}

// Submit records a user turn, dispatches it and records the reply. It
// blocks until the conversation is idle again.
//
// Submissions with no text and no attachments, and submissions made while a
// dispatch is outstanding, are ignored: nothing is appended and the response
// has Ignored set.
func (s *MessageService) Submit(ctx context.Context, userID, conversationID string, req *model.SubmitTurnRequest) (*model.SubmitTurnResponse, error) {
	log := s.logger.With(
		zap.String("user_id", userID),
		zap.String("conversation_id", conversationID),
	)

	if strings.TrimSpace(req.Prompt) == "" && len(req.Attachments) == 0 {
		conv, err := s.conversationService.Get(ctx, userID, conversationID)
		if err != nil {
			return nil, err
		}
		metrics.SubmissionsIgnoredTotal.WithLabelValues("empty").Inc()
		return &model.SubmitTurnResponse{Ignored: true, Status: conv.Status}, nil
	}

	userTurn := model.Turn{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		Role:           model.RoleUser,
		Content:        req.Prompt,
		Timestamp:      time.Now(),
		Attachments:    append([]model.Attachment(nil), req.Attachments...),
	}

	history, ok, err := s.conversationService.begin(ctx, userID, conversationID, userTurn, s.contextWindow)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.SubmissionsIgnoredTotal.WithLabelValues("busy").Inc()
		log.Debug("submission ignored while thinking")
		return &model.SubmitTurnResponse{Ignored: true, Status: model.StatusThinking}, nil
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = DiagnosticPrompt
	}

	result := s.dispatcher.Dispatch(ctx, prompt, history, userTurn.Attachments)

	assistantTurn := model.Turn{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		Role:           model.RoleAssistant,
		Content:        result.Content,
		Timestamp:      time.Now(),
		IsImage:        result.IsImage,
	}
	if result.ImageData != "" {
		assistantTurn.Attachments = []model.Attachment{{Data: result.ImageData, MIMEType: "image/png"}}
	}

	s.conversationService.settle(ctx, conversationID, assistantTurn)

	log.Info("turn settled",
		zap.Bool("is_image", result.IsImage),
		zap.Int("context_turns", len(history)),
		zap.Int("attachments", len(userTurn.Attachments)),
	)

	return &model.SubmitTurnResponse{
		Status:        model.StatusIdle,
		UserTurn:      &userTurn,
		AssistantTurn: &assistantTurn,
	}, nil
}
