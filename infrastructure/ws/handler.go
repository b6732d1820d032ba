package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chat-hub/domain"
	"chat-hub/domain/chat"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/services"
)

var validate = validator.New()

// inboundEnvelope is the wire frame for client → server events.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// outboundEnvelope mirrors it for server → client delivery.
type outboundEnvelope struct {
	Event string         `json:"event"`
	Data  event.Outbound `json:"data"`
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Avatar   string `json:"avatar"`
}

type createGroupPayload struct {
	GroupName string   `json:"group_name" validate:"required"`
	Avatar    string   `json:"avatar"`
	Members   []string `json:"members"`
}

type privateMessagePayload struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type groupMessagePayload struct {
	Group   string `json:"group" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type historyPayload struct {
	Target string `json:"target" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=private group"`
}

// Handler accepts WebSocket connections and runs one Session each:
// a read loop decoding inbound envelopes into commands, and a write
// pump draining the connection's Sink back onto the socket.
type Handler struct {
	log                  *slog.Logger
	chat                 services.IChatService
	connectionBufferSize int
}

func NewHandler(log *slog.Logger, chat services.IChatService, connectionBufferSize int) *Handler {
	return &Handler{log: log, chat: chat, connectionBufferSize: connectionBufferSize}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Any origin: browser clients connect from anywhere and the
		// protocol carries no credentials worth hijacking.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Debug("WebSocket accept failed", "error", err)
		return
	}

	connID := domain.ConnID(uuid.NewString())
	sink := NewSink(h.connectionBufferSize)
	h.log.Info("Client connected", "conn", string(connID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.chat.Connect(connID, sink)
	defer h.chat.Disconnect(connID)

	go h.writePump(ctx, conn, connID, sink)

	// Read loop. Any read error, including a normal close, tears the
	// session down; the deferred Disconnect synthesizes the
	// disconnect event for the coordinator.
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Info("Client disconnected", "conn", string(connID))
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		h.route(connID, data)
	}
}

// writePump owns all writes to the socket so the coordinator never
// touches the connection directly.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, connID domain.ConnID, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sink.Events:
			data, err := json.Marshal(outboundEnvelope{Event: evt.EventName(), Data: evt})
			if err != nil {
				h.log.Error("Outbound marshal failed", "event", evt.EventName(), "error", err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				h.log.Debug("Outbound write failed", "conn", string(connID), "error", err)
				return
			}
		}
	}
}

// route decodes one inbound frame and enqueues the matching command.
// Malformed frames and payloads that fail validation are dropped
// silently toward the client, logged server-side.
func (h *Handler) route(connID domain.ConnID, raw []byte) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		h.log.Debug("Malformed inbound frame", "conn", string(connID), "error", err)
		return
	}

	if err := h.dispatch(connID, envelope); err != nil {
		h.log.Debug("Inbound event dropped",
			"conn", string(connID),
			"event", envelope.Event,
			"error", err)
	}
}

func (h *Handler) dispatch(connID domain.ConnID, envelope inboundEnvelope) error {
	switch envelope.Event {
	case "login":
		var p loginPayload
		if err := decode(envelope.Data, &p); err != nil {
			return err
		}
		h.chat.Login(connID, p.Username, p.Avatar)

	case "create_group":
		var p createGroupPayload
		if err := decode(envelope.Data, &p); err != nil {
			return err
		}
		h.chat.CreateGroup(connID, p.GroupName, p.Avatar, p.Members)

	case "private_message":
		var p privateMessagePayload
		if err := decode(envelope.Data, &p); err != nil {
			return err
		}
		h.chat.SendPrivateMessage(connID, p.To, p.Message)

	case "group_message":
		var p groupMessagePayload
		if err := decode(envelope.Data, &p); err != nil {
			return err
		}
		h.chat.SendGroupMessage(connID, p.Group, p.Message)

	case "get_history":
		var p historyPayload
		if err := decode(envelope.Data, &p); err != nil {
			return err
		}
		h.chat.RequestHistory(connID, p.Target, chat.HistoryKind(p.Type))

	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Event)
	}
	return nil
}

func decode(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return err
	}
	return validate.Struct(payload)
}
