package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/model"
)

// SubjectPrefix is the prefix for all conversation subjects.
const SubjectPrefix = "assistant"

// EventSubject returns the subject for one event type of a conversation.
func EventSubject(conversationID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, conversationID, eventType)
}

// ConversationFilter returns the wildcard subject covering a conversation.
func ConversationFilter(conversationID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, conversationID)
}

// EventType extracts the event type from a conversation subject.
func EventType(subject string) (model.EventType, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 3 || parts[0] != SubjectPrefix {
		return "", false
	}
	return model.EventType(parts[2]), true
}

// Event is a raw conversation event received from the bus.
type Event struct {
	Type model.EventType
	Data []byte
}

// EventBus publishes and subscribes to conversation events over core NATS.
// Events are fire-and-forget; nothing is retained for late subscribers.
type EventBus struct {
	client *Client
}

// NewEventBus creates an event bus on an established connection.
func NewEventBus(client *Client) *EventBus {
	return &EventBus{client: client}
}

// PublishStatus publishes a status transition.
func (b *EventBus) PublishStatus(ctx context.Context, event *model.StatusEvent) error {
	return b.publish(ctx, EventSubject(event.ConversationID, model.EventTypeStatus), event)
}

// PublishTurn publishes an appended turn.
func (b *EventBus) PublishTurn(ctx context.Context, event *model.TurnEvent) error {
	return b.publish(ctx, EventSubject(event.ConversationID, model.EventTypeTurn), event)
}

func (b *EventBus) publish(ctx context.Context, subject string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Conn().Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe delivers every event of a conversation to the returned channel
// until the returned cancel function is called. Events arriving while the
// channel is full are dropped.
func (b *EventBus) Subscribe(conversationID string) (<-chan Event, func(), error) {
	events := make(chan Event, 64)

	sub, err := b.client.Conn().Subscribe(ConversationFilter(conversationID), func(msg *nats.Msg) {
		eventType, ok := EventType(msg.Subject)
		if !ok {
			return
		}
		select {
		case events <- Event{Type: eventType, Data: msg.Data}:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	cancel := func() {
		if err := sub.Unsubscribe(); err != nil {
			b.client.logger.Debug("unsubscribe failed", zap.Error(err))
		}
	}
	return events, cancel, nil
}
