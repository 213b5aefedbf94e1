// Package service provides business logic for the assistant.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
	"github.com/gct-et/assistant/pkg/metrics"
)

// ErrConversationNotFound is returned for unknown or foreign conversations.
var ErrConversationNotFound = errors.New("conversation not found")

// EventPublisher announces conversation changes to live observers.
type EventPublisher interface {
	PublishStatus(ctx context.Context, event *model.StatusEvent) error
	PublishTurn(ctx context.Context, event *model.TurnEvent) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// PublishStatus implements EventPublisher.
func (NoopPublisher) PublishStatus(context.Context, *model.StatusEvent) error { return nil }

// PublishTurn implements EventPublisher.
func (NoopPublisher) PublishTurn(context.Context, *model.TurnEvent) error { return nil }

type session struct {
	conv  model.Conversation
	turns []model.Turn
}

// ConversationService handles conversation operations.
type ConversationService struct {
	publisher EventPublisher
	logger    *logger.Logger

	// Sessions live for the lifetime of the process.
	sessions map[string]*session
	mu       sync.RWMutex
}

// NewConversationService creates a new conversation service. A nil
// publisher disables events.
func NewConversationService(publisher EventPublisher, log *logger.Logger) *ConversationService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ConversationService{
		publisher: publisher,
		logger:    log.Named("conversations"),
		sessions:  make(map[string]*session),
	}
}

// Create creates a new idle conversation.
func (s *ConversationService) Create(ctx context.Context, userID string, req *model.CreateConversationRequest) (*model.Conversation, error) {
	now := time.Now()

	conv := model.Conversation{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     req.Title,
		Status:    model.StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[conv.ID] = &session{conv: conv}
	s.mu.Unlock()

	metrics.ConversationsActive.Inc()
	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("user_id", userID),
	)

	return &conv, nil
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(userID, conversationID)
	if err != nil {
		return nil, err
	}

	conv := sess.conv
	return &conv, nil
}

// List retrieves a user's conversations, newest first.
func (s *ConversationService) List(ctx context.Context, userID string, limit, offset int) (*model.ListConversationsResponse, error) {
	s.mu.RLock()
	convs := make([]model.Conversation, 0)
	for _, sess := range s.sessions {
		if sess.conv.UserID == userID {
			convs = append(convs, sess.conv)
		}
	}
	s.mu.RUnlock()

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	total := len(convs)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.ListConversationsResponse{
		Conversations: convs[start:end],
		Total:         total,
		HasMore:       end < total,
	}, nil
}

// Delete drops a conversation and its history. An in-flight dispatch for it
// settles without effect.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(userID, conversationID); err != nil {
		return err
	}
	delete(s.sessions, conversationID)

	metrics.ConversationsActive.Dec()
	s.logger.Info("conversation deleted", zap.String("conversation_id", conversationID))
	return nil
}

// Turns returns a copy of the history and the current status.
func (s *ConversationService) Turns(ctx context.Context, userID, conversationID string) ([]model.Turn, model.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(userID, conversationID)
	if err != nil {
		return nil, "", err
	}

	turns := make([]model.Turn, len(sess.turns))
	copy(turns, sess.turns)
	return turns, sess.conv.Status, nil
}

// begin appends the user turn and flips the conversation to thinking. The
// returned context window is taken before the append. ok is false when the
// conversation is already busy, in which case nothing changes.
func (s *ConversationService) begin(ctx context.Context, userID, conversationID string, turn model.Turn, window int) (history []model.ContextEntry, ok bool, err error) {
	s.mu.Lock()
	sess, err := s.lookup(userID, conversationID)
	if err != nil {
		s.mu.Unlock()
		return nil, false, err
	}
	if sess.conv.Status.Busy() {
		s.mu.Unlock()
		return nil, false, nil
	}

	history = ContextWindow(sess.turns, window)
	s.appendLocked(sess, turn)
	sess.conv.Status = model.StatusThinking
	s.mu.Unlock()

	s.publishTurn(ctx, turn)
	s.publishStatus(ctx, conversationID, model.StatusThinking)
	return history, true, nil
}

// settle appends the assistant turn and returns the conversation to idle.
func (s *ConversationService) settle(ctx context.Context, conversationID string, turn model.Turn) {
	s.mu.Lock()
	sess, exists := s.sessions[conversationID]
	if !exists {
		s.mu.Unlock()
		s.logger.Info("conversation removed before dispatch settled",
			zap.String("conversation_id", conversationID),
		)
		return
	}
	if !sess.conv.Status.CanTransition(model.StatusIdle) {
		s.logger.Warn("settling a conversation that was not thinking",
			zap.String("conversation_id", conversationID),
			zap.String("status", string(sess.conv.Status)),
		)
	}
	s.appendLocked(sess, turn)
	sess.conv.Status = model.StatusIdle
	s.mu.Unlock()

	s.publishTurn(ctx, turn)
	s.publishStatus(ctx, conversationID, model.StatusIdle)
}

func (s *ConversationService) appendLocked(sess *session, turn model.Turn) {
	sess.turns = append(sess.turns, turn)
	sess.conv.TurnCount++
	last := turn
	sess.conv.LastTurn = &last
	sess.conv.UpdatedAt = turn.Timestamp

	metrics.TurnsTotal.WithLabelValues(string(turn.Role)).Inc()
}

func (s *ConversationService) lookup(userID, conversationID string) (*session, error) {
	sess, exists := s.sessions[conversationID]
	if !exists || sess.conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return sess, nil
}

func (s *ConversationService) publishStatus(ctx context.Context, conversationID string, status model.Status) {
	err := s.publisher.PublishStatus(ctx, &model.StatusEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		Status:         status,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish status event",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}

func (s *ConversationService) publishTurn(ctx context.Context, turn model.Turn) {
	err := s.publisher.PublishTurn(ctx, &model.TurnEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: turn.ConversationID,
		Turn:           turn,
	})
	if err != nil {
		s.logger.Warn("failed to publish turn event",
			zap.String("conversation_id", turn.ConversationID),
			zap.Error(err),
		)
	}
}
