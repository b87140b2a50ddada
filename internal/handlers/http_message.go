package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/pkg/logger"
)

// HTTPMessageHandler - история и отправка сообщений через HTTP (альтернатива WebSocket)
type HTTPMessageHandler struct {
	rooms   *services.RoomService
	threads *services.ThreadService
	log     *logger.Logger
}

func NewHTTPMessageHandler(rooms *services.RoomService, threads *services.ThreadService, log *logger.Logger) *HTTPMessageHandler {
	return &HTTPMessageHandler{rooms: rooms, threads: threads, log: log.With("component", "message_handler")}
}

// GetRoomMessages получает историю сообщений комнаты
func (h *HTTPMessageHandler) GetRoomMessages(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messages, err := h.rooms.ListMessages(c.Request.Context(), eventID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *HTTPMessageHandler) SendRoomMessage(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.rooms.PostMessage(c.Request.Context(), eventID, middleware.UserID(c), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *HTTPMessageHandler) GetThreadMessages(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	messages, err := h.threads.ListMessages(c.Request.Context(), threadID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *HTTPMessageHandler) SendThreadMessage(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.MessagePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.threads.PostMessage(c.Request.Context(), threadID, middleware.UserID(c), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
