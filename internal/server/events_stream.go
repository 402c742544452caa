package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/turnips/internal/events"
)

const (
	streamBufferSize  = 100
	heartbeatInterval = 30 * time.Second
	writeTimeout      = 5 * time.Second
)

// EventsStreamHandler streams bus events to websocket clients.
type EventsStreamHandler struct {
	eventBus  *events.Bus
	log       zerolog.Logger
	heartbeat time.Duration
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:  eventBus,
		log:       log.With().Str("component", "events_stream").Logger(),
		heartbeat: heartbeatInterval,
	}
}

// streamMessage is one frame sent to a client.
type streamMessage struct {
	Type      string                 `json:"type"`
	Module    string                 `json:"module,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

// ServeHTTP handles GET /api/events/ws?types=a,b requests.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	types := parseEventTypes(r.URL.Query().Get("types"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the client goes away.
	ctx := conn.CloseRead(r.Context())

	eventChan := make(chan events.Event, streamBufferSize)
	unsubscribe := h.eventBus.Subscribe(func(event events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}, types...)
	defer unsubscribe()

	h.log.Info().Int("types", len(types)).Msg("Client connected to event stream")

	if err := h.send(ctx, conn, streamMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "Connected to event stream",
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			if err := h.send(ctx, conn, streamMessage{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}); err != nil {
				return
			}

		case <-heartbeat.C:
			if err := h.send(ctx, conn, streamMessage{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}
	}
}

func (h *EventsStreamHandler) send(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode event")
		return nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write to event stream")
		return err
	}
	return nil
}

// parseEventTypes reads a comma-separated type filter. Blank entries are
// ignored; nil means every type.
func parseEventTypes(s string) []events.EventType {
	var types []events.EventType
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			types = append(types, events.EventType(v))
		}
	}
	return types
}
