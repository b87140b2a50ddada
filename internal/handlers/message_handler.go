package handlers

import (
	"context"
	"encoding/json"

	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/internal/websocket"
	"github.com/thereayou/gigmate/pkg/logger"
)

// MessageHandler обслуживает кадры subscribe и message от WebSocket клиентов
type MessageHandler struct {
	events      *realtime.Hub
	rooms       *services.RoomService
	threads     *services.ThreadService
	connections *services.ConnectionService
	log         *logger.Logger
}

func NewMessageHandler(
	events *realtime.Hub,
	rooms *services.RoomService,
	threads *services.ThreadService,
	connections *services.ConnectionService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		events:      events,
		rooms:       rooms,
		threads:     threads,
		connections: connections,
		log:         log.With("component", "ws_message_handler"),
	}
}

type roomSnapshot struct {
	Messages []dto.RoomMessage `json:"messages"`
}

type userSnapshot struct {
	Connections []dto.Connection `json:"connections"`
	Threads     []dto.Thread     `json:"threads"`
}

func (h *MessageHandler) HandleMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeSubscribe:
		return h.handleSubscribe(ctx, client, *msg.Channel)
	case websocket.TypeMessage:
		return h.handleTextMessage(ctx, client, msg)
	default:
		return websocket.ErrInvalidMessage
	}
}

// handleSubscribe регистрирует подписку в хабе до чтения снимка,
// так что событие, записанное между ними, придет хотя бы один раз
func (h *MessageHandler) handleSubscribe(ctx context.Context, client *websocket.Client, ch realtime.Channel) error {
	if err := h.authorize(ctx, client, ch); err != nil {
		return err
	}

	sub := h.events.Subscribe(ch)
	snapshot, err := h.snapshot(ctx, client, ch)
	if err != nil {
		sub.Close()
		return err
	}
	if err := client.Attach(ch, sub, snapshot); err != nil {
		return err
	}
	h.log.Debug("subscribed", "user_id", client.UserID, "channel", ch.String())
	return nil
}

func (h *MessageHandler) authorize(ctx context.Context, client *websocket.Client, ch realtime.Channel) error {
	switch ch.Kind {
	case realtime.KindRoom:
		member, err := h.rooms.IsMember(ctx, ch.ID, client.UserID)
		if err != nil {
			return err
		}
		if !member {
			return apperr.ErrNotRoomMember
		}
		return nil
	case realtime.KindThread:
		_, err := h.threads.GetForParticipant(ctx, ch.ID, client.UserID)
		return err
	case realtime.KindUser:
		if ch.ID != client.UserID {
			return apperr.Forbidden(apperr.CodeNotParticipant, "cannot subscribe to another user's channel")
		}
		return nil
	default:
		return websocket.ErrInvalidMessage
	}
}

func (h *MessageHandler) snapshot(ctx context.Context, client *websocket.Client, ch realtime.Channel) (interface{}, error) {
	switch ch.Kind {
	case realtime.KindRoom:
		messages, err := h.rooms.ListMessages(ctx, ch.ID, client.UserID)
		if err != nil {
			return nil, err
		}
		return roomSnapshot{Messages: messages}, nil
	case realtime.KindThread:
		return h.threads.Snapshot(ctx, ch.ID, client.UserID)
	default:
		conns, err := h.connections.ListForUser(ctx, client.UserID)
		if err != nil {
			return nil, err
		}
		threads, err := h.threads.ListForUser(ctx, client.UserID)
		if err != nil {
			return nil, err
		}
		return userSnapshot{Connections: conns, Threads: threads}, nil
	}
}

// handleTextMessage публикует сообщение в комнату или тред; доставка идет через хаб
func (h *MessageHandler) handleTextMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.MessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}

	var err error
	switch msg.Channel.Kind {
	case realtime.KindRoom:
		_, err = h.rooms.PostMessage(ctx, msg.Channel.ID, client.UserID, payload.Content)
	case realtime.KindThread:
		_, err = h.threads.PostMessage(ctx, msg.Channel.ID, client.UserID, payload.Content)
	default:
		err = websocket.ErrInvalidMessage
	}
	return err
}
