package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

// MessageType определяет типы кадров протокола
type MessageType string

const (
	// Системные типы
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// От клиента
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypeMessage     MessageType = "message"

	// От сервера
	TypeSnapshot MessageType = "snapshot"
	TypeEvent    MessageType = "event"
	TypeResync   MessageType = "resync"
)

// Message - кадр в обе стороны. Для TypeEvent заполнены Event и Seq.
type Message struct {
	Type      MessageType        `json:"type"`
	Channel   *realtime.Channel  `json:"channel,omitempty"`
	Event     realtime.EventType `json:"event,omitempty"`
	Seq       uint64             `json:"seq,omitempty"`
	Data      json.RawMessage    `json:"data,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Hub ведет реестр соединений и по нему отвечает, кто онлайн
type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (один пользователь может иметь несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	mu   sync.RWMutex
	done chan struct{}

	pingInterval time.Duration
	log          *logger.Logger
}

// NewHub создает новый Hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:      make(map[uuid.UUID]*Client),
		userClients:  make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		pingInterval: 30 * time.Second,
		log:          log.With("component", "ws_hub"),
	}
}

// Run обслуживает регистрацию до отмены ctx, затем закрывает все соединения
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		client.close()
		client.conn.Close()
		delete(h.clients, id)
	}
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.log.Info("websocket hub stopped")
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
		client.conn.Close()
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	h.log.Debug("client registered", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	// Удаляем из списка клиентов пользователя
	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	client.close()

	h.log.Debug("client unregistered", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if err := client.SendMessage(Message{Type: TypePing}); err != nil {
			h.log.Debug("ping skipped", "client_id", client.ID, "error", err)
		}
	}
}

// IsOnline - есть ли у пользователя хотя бы одно соединение
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}
