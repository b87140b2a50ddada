package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024

	sendBuffer = 256
)

// ClientMessageHandler обрабатывает subscribe/unsubscribe/message
type ClientMessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *Message) error
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	subs   map[realtime.Channel]*realtime.Subscription
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    hub,
		log:    hub.log.With("client_id", id, "user_id", userID),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[realtime.Channel]*realtime.Subscription),
	}
}

// Context отменяется при закрытии соединения
func (c *Client) Context() context.Context {
	return c.ctx
}

// ReadPump читает сообщения от клиента
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", "error", err)
			}
			return
		}

		switch msg.Type {
		case TypePong:
			c.conn.SetReadDeadline(time.Now().Add(pongWait))
			continue
		case TypeSubscribe, TypeUnsubscribe, TypeMessage:
			if msg.Channel == nil || !msg.Channel.Kind.Valid() || msg.Channel.ID == uuid.Nil {
				c.SendError(msg.Channel, ErrInvalidMessage)
				continue
			}
		default:
			c.SendError(msg.Channel, ErrInvalidMessage)
			continue
		}

		if msg.Type == TypeUnsubscribe {
			c.Detach(*msg.Channel)
			continue
		}

		if err := handler.HandleMessage(c.ctx, c, &msg); err != nil {
			if apperr.KindOf(err) == "" {
				c.log.Error("handle message failed", "type", msg.Type, "channel", msg.Channel.String(), "error", err)
			}
			c.SendError(msg.Channel, err)
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Attach подключает подписку на канал: сначала снимок, затем поток событий.
// Подписка в хабе уже зарегистрирована до чтения снимка, поэтому события
// не теряются; повтор между снимком и потоком клиент сводит по id.
func (c *Client) Attach(ch realtime.Channel, sub *realtime.Subscription, snapshot interface{}) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		sub.Close()
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Close()
		return ErrClientClosed
	}
	if prev, ok := c.subs[ch]; ok {
		prev.Close()
	}
	c.subs[ch] = sub
	c.mu.Unlock()

	if err := c.SendMessage(Message{Type: TypeSnapshot, Channel: &ch, Data: data}); err != nil {
		c.Detach(ch)
		return err
	}

	go c.forward(ch, sub)
	return nil
}

// Detach закрывает подписку на канал, если она есть
func (c *Client) Detach(ch realtime.Channel) {
	c.mu.Lock()
	sub, ok := c.subs[ch]
	delete(c.subs, ch)
	c.mu.Unlock()

	if ok {
		sub.Close()
	}
}

func (c *Client) IsSubscribed(ch realtime.Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[ch]
	return ok
}

func (c *Client) forward(ch realtime.Channel, sub *realtime.Subscription) {
	for ev := range sub.Events() {
		err := c.SendMessage(Message{
			Type:      TypeEvent,
			Channel:   &ch,
			Event:     ev.Type,
			Seq:       ev.Seq,
			Data:      ev.Data,
			Timestamp: ev.Timestamp,
		})
		if err != nil {
			// клиент не успевает читать; переподключение даст свежие снимки
			c.log.Warn("client too slow, closing", "channel", ch.String(), "error", err)
			c.conn.Close()
			return
		}
	}

	c.mu.Lock()
	if c.subs[ch] == sub {
		delete(c.subs, ch)
	}
	c.mu.Unlock()

	if sub.Lagged() {
		c.log.Warn("subscription lagged, asking client to resync", "channel", ch.String())
		c.SendMessage(Message{Type: TypeResync, Channel: &ch})
	}
}

func (c *Client) SendMessage(msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.ctx.Done():
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- msgData:
		return nil
	default:
		return ErrClientQueueFull
	}
}

// SendError отправляет клиенту стабильный код ошибки
func (c *Client) SendError(ch *realtime.Channel, err error) {
	payload := map[string]string{"error": "internal", "message": "internal error"}
	if e, ok := apperr.As(err); ok {
		payload = map[string]string{"error": e.Code, "message": e.Message}
	} else if errors.Is(err, ErrInvalidMessage) {
		payload = map[string]string{"error": "invalid_message", "message": err.Error()}
	}

	data, _ := json.Marshal(payload)
	if sendErr := c.SendMessage(Message{Type: TypeError, Channel: ch, Data: data}); sendErr != nil {
		c.log.Debug("error frame dropped", "error", sendErr)
	}
}

// close отменяет контекст и все подписки клиента; повторный вызов ничего не делает
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[realtime.Channel]*realtime.Subscription)
	c.mu.Unlock()

	c.cancel()
	for _, sub := range subs {
		sub.Close()
	}
}
