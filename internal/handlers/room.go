package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/pkg/logger"
)

type RoomHandler struct {
	rooms   *services.RoomService
	catalog *services.CatalogService
	log     *logger.Logger
}

func NewRoomHandler(rooms *services.RoomService, catalog *services.CatalogService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, catalog: catalog, log: log.With("component", "room_handler")}
}

// ListEvents - события, отсортированные под вкус текущего пользователя
func (h *RoomHandler) ListEvents(c *gin.Context) {
	events, err := h.catalog.RankedEvents(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *RoomHandler) GetEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	event, err := h.catalog.Event(c.Request.Context(), eventID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// JoinRoom идемпотентен: повторный вход тоже 204
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.rooms.Join(c.Request.Context(), eventID, middleware.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers - участники комнаты кроме текущего, по убыванию совместимости
func (h *RoomHandler) ListMembers(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	members, err := h.rooms.RankedMembers(c.Request.Context(), eventID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *RoomHandler) JoinedRooms(c *gin.Context) {
	rooms, err := h.rooms.JoinedRooms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_ids": rooms})
}
