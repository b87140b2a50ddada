package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/pkg/logger"
)

type ConnectionHandler struct {
	connections  *services.ConnectionService
	orchestrator *services.Orchestrator
	log          *logger.Logger
}

func NewConnectionHandler(connections *services.ConnectionService, orchestrator *services.Orchestrator, log *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections:  connections,
		orchestrator: orchestrator,
		log:          log.With("component", "connection_handler"),
	}
}

type requestConnectionRequest struct {
	EventID     uuid.UUID `json:"event_id" binding:"required"`
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
}

type respondRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// Request создает запрос от текущего пользователя
func (h *ConnectionHandler) Request(c *gin.Context) {
	var req requestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	userID := middleware.UserID(c)
	conn, err := h.connections.Request(c.Request.Context(), req.EventID, userID, req.RecipientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewConnection(conn, userID))
}

func (h *ConnectionHandler) Respond(c *gin.Context) {
	connID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	decision, err := services.ParseDecision(req.Decision)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res, err := h.connections.Respond(c.Request.Context(), connID, middleware.UserID(c), decision)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List - связи пользователя с категориями incoming/sent/accepted/declined
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.connections.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *ConnectionHandler) PairStatus(c *gin.Context) {
	eventID, err := uuid.Parse(c.Query("event_id"))
	if err != nil {
		badRequest(c, "invalid event_id")
		return
	}
	otherID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		badRequest(c, "invalid user_id")
		return
	}

	status, err := h.connections.PairStatus(c.Request.Context(), eventID, middleware.UserID(c), otherID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// EnsureThread - восстановление треда принятой связи после частичного сбоя
func (h *ConnectionHandler) EnsureThread(c *gin.Context) {
	connID, ok := paramID(c, "id")
	if !ok {
		return
	}
	thread, err := h.orchestrator.EnsureThread(c.Request.Context(), connID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewThread(thread))
}
