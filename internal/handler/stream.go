package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/middleware"
	"github.com/gct-et/assistant/internal/model"
	natsclient "github.com/gct-et/assistant/internal/nats"
	"github.com/gct-et/assistant/internal/service"
	"github.com/gct-et/assistant/pkg/logger"
	"github.com/gct-et/assistant/pkg/metrics"
)

// EventSubscriber delivers live conversation events.
type EventSubscriber interface {
	Subscribe(conversationID string) (<-chan natsclient.Event, func(), error)
}

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	conversationService *service.ConversationService
	subscriber          EventSubscriber
	heartbeat           time.Duration
	logger              *logger.Logger
}

// NewStreamHandler creates a new stream handler. A nil subscriber disables
// streaming.
func NewStreamHandler(
	convSvc *service.ConversationService,
	subscriber EventSubscriber,
	log *logger.Logger,
) *StreamHandler {
	return &StreamHandler{
		conversationService: convSvc,
		subscriber:          subscriber,
		heartbeat:           30 * time.Second,
		logger:              log,
	}
}

// ReplayCompleteEvent marks the end of history replay.
type ReplayCompleteEvent struct {
	TurnCount int          `json:"turn_count"`
	Status    model.Status `json:"status"`
}

// Stream handles GET /api/v1/conversations/:id/stream. It replays the
// history, then forwards live status and turn events until the client leaves.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.subscriber == nil {
		writeError(w, http.StatusServiceUnavailable, "streaming is not enabled")
		return
	}

	if _, err := h.conversationService.Get(ctx, userID, conversationID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before replay so nothing settles unseen in between.
	events, unsubscribe, err := h.subscriber.Subscribe(conversationID)
	if err != nil {
		h.logger.Error("failed to subscribe", zap.String("conversation_id", conversationID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}
	defer unsubscribe()

	turns, status, err := h.conversationService.Turns(ctx, userID, conversationID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"conversation_id": conversationID,
	})

	replayed := make(map[string]struct{}, len(turns))
	for _, turn := range turns {
		replayed[turn.ID] = struct{}{}
		sendSSEEvent(w, flusher, string(model.EventTypeTurn), &model.TurnEvent{
			ConversationID: conversationID,
			Turn:           turn,
		})
	}
	sendSSEEvent(w, flusher, "replay_complete", &ReplayCompleteEvent{
		TurnCount: len(turns),
		Status:    status,
	})

	log := h.logger.WithConversation(middleware.GetCorrelationID(ctx), userID, conversationID)
	log.Info("turn replay complete", zap.Int("turns_replayed", len(turns)))

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("SSE client disconnected")
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			// A turn that settled between subscribe and replay arrives twice.
			if ev.Type == model.EventTypeTurn && wasReplayed(replayed, ev.Data) {
				continue
			}
			writeSSE(w, flusher, string(ev.Type), ev.Data)

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func wasReplayed(replayed map[string]struct{}, data []byte) bool {
	var ev model.TurnEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return false
	}
	_, ok := replayed[ev.Turn.ID]
	return ok
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	writeSSE(w, flusher, event, jsonData)
	return nil
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
