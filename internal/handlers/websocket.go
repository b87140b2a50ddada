package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thereayou/gigmate/internal/middleware"
	ws "github.com/thereayou/gigmate/internal/websocket"
	"github.com/thereayou/gigmate/pkg/logger"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub            *ws.Hub
	messageHandler *MessageHandler
	upgrader       websocket.Upgrader
	log            *logger.Logger
}

// NewWebSocketHandler создает новый WebSocket handler. Пустой allowedOrigins пропускает любой origin.
func NewWebSocketHandler(hub *ws.Hub, messageHandler *MessageHandler, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub:            hub,
		messageHandler: messageHandler,
		log:            log.With("component", "ws_handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.messageHandler)
}
