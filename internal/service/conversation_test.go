package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gct-et/assistant/internal/model"
	"github.com/gct-et/assistant/pkg/logger"
)

type recordingPublisher struct {
	mu       sync.Mutex
	statuses []model.Status
	turns    []model.Role
	err      error
}

func (p *recordingPublisher) PublishStatus(ctx context.Context, e *model.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, e.Status)
	return p.err
}

func (p *recordingPublisher) PublishTurn(ctx context.Context, e *model.TurnEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turns = append(p.turns, e.Turn.Role)
	return p.err
}

func TestConversationService_CreateGet(t *testing.T) {
	svc := NewConversationService(nil, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{Title: "Transformers"})
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, model.StatusIdle, conv.Status)
	assert.Equal(t, "Transformers", conv.Title)

	got, err := svc.Get(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)

	_, err = svc.Get(ctx, "user-2", conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.Get(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationService_ListScopedAndPaged(t *testing.T) {
	svc := NewConversationService(nil, logger.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := svc.Create(ctx, "user-2", &model.CreateConversationRequest{})
	require.NoError(t, err)

	resp, err := svc.List(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Conversations, 2)
	assert.True(t, resp.HasMore)
	assert.True(t, resp.Conversations[0].CreatedAt.After(resp.Conversations[1].CreatedAt))

	resp, err = svc.List(ctx, "user-1", 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Conversations, 1)
	assert.False(t, resp.HasMore)

	resp, err = svc.List(ctx, "user-3", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Conversations)
}

func TestConversationService_Delete(t *testing.T) {
	svc := NewConversationService(nil, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "user-2", conv.ID), ErrConversationNotFound)
	require.NoError(t, svc.Delete(ctx, "user-1", conv.ID))

	_, err = svc.Get(ctx, "user-1", conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationService_BeginSettle(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewConversationService(pub, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	first := model.Turn{ID: "u1", ConversationID: conv.ID, Role: model.RoleUser, Content: "hi", Timestamp: time.Now()}
	history, ok, err := svc.begin(ctx, "user-1", conv.ID, first, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, history, "window excludes the in-flight turn")

	_, status, err := svc.Turns(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusThinking, status)

	_, ok, err = svc.begin(ctx, "user-1", conv.ID, model.Turn{ID: "u2", Role: model.RoleUser}, 10)
	require.NoError(t, err)
	assert.False(t, ok, "busy conversation rejects a second begin")

	svc.settle(ctx, conv.ID, model.Turn{ID: "a1", ConversationID: conv.ID, Role: model.RoleAssistant, Content: "<p>hello</p>", Timestamp: time.Now()})

	turns, status, err := svc.Turns(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, status)
	require.Len(t, turns, 2)
	assert.Equal(t, "u1", turns[0].ID)
	assert.Equal(t, "a1", turns[1].ID)

	got, err := svc.Get(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TurnCount)
	require.NotNil(t, got.LastTurn)
	assert.Equal(t, "a1", got.LastTurn.ID)

	history, ok, err = svc.begin(ctx, "user-1", conv.ID, model.Turn{ID: "u3", Role: model.RoleUser}, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []model.ContextEntry{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "<p>hello</p>"},
	}, history)

	assert.Equal(t, []model.Status{model.StatusThinking, model.StatusIdle, model.StatusThinking}, pub.statuses)
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleAssistant, model.RoleUser}, pub.turns)
}

func TestConversationService_SettleAfterDelete(t *testing.T) {
	svc := NewConversationService(nil, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	_, ok, err := svc.begin(ctx, "user-1", conv.ID, model.Turn{ID: "u1", Role: model.RoleUser}, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, svc.Delete(ctx, "user-1", conv.ID))

	assert.NotPanics(t, func() {
		svc.settle(ctx, conv.ID, model.Turn{ID: "a1", Role: model.RoleAssistant})
	})
}

func TestConversationService_PublishFailureIsNotFatal(t *testing.T) {
	svc := NewConversationService(&recordingPublisher{err: errors.New("nats down")}, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	_, ok, err := svc.begin(ctx, "user-1", conv.ID, model.Turn{ID: "u1", Role: model.RoleUser}, 10)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConversationService_TurnsReturnsCopy(t *testing.T) {
	svc := NewConversationService(nil, logger.NewNop())
	ctx := context.Background()

	conv, err := svc.Create(ctx, "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)
	_, _, err = svc.begin(ctx, "user-1", conv.ID, model.Turn{ID: "u1", Role: model.RoleUser, Content: "original"}, 10)
	require.NoError(t, err)

	turns, _, err := svc.Turns(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	turns[0].Content = "mutated"

	turns, _, err = svc.Turns(ctx, "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", turns[0].Content)
}
