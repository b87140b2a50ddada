package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/services"
	"github.com/thereayou/gigmate/pkg/logger"
)

type ThreadHandler struct {
	threads *services.ThreadService
	log     *logger.Logger
}

func NewThreadHandler(threads *services.ThreadService, log *logger.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, log: log.With("component", "thread_handler")}
}

type goingTogetherRequest struct {
	Going *bool `json:"going" binding:"required"`
}

type addItemRequest struct {
	Title      string     `json:"title" binding:"required"`
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// updateItemRequest: assigned_to: null снимает исполнителя, отсутствие поля не меняет его
type updateItemRequest struct {
	Title      *string         `json:"title"`
	AssignedTo json.RawMessage `json:"assigned_to"`
}

func (h *ThreadHandler) List(c *gin.Context) {
	threads, err := h.threads.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (h *ThreadHandler) Get(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	thread, err := h.threads.GetForParticipant(c.Request.Context(), threadID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewThread(thread))
}

func (h *ThreadHandler) SetGoingTogether(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req goingTogetherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.threads.SetGoingTogether(c.Request.Context(), threadID, middleware.UserID(c), *req.Going)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ThreadHandler) ListItems(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.threads.ListItems(c.Request.Context(), threadID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ThreadHandler) AddItem(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	item, err := h.threads.AddItem(c.Request.Context(), threadID, middleware.UserID(c), req.Title, req.AssignedTo)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ThreadHandler) ToggleItem(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	item, err := h.threads.ToggleItem(c.Request.Context(), threadID, itemID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ThreadHandler) UpdateItem(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := services.ItemPatch{Title: req.Title}
	if len(req.AssignedTo) > 0 {
		patch.SetAssignee = true
		if string(req.AssignedTo) != "null" {
			var assignee uuid.UUID
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				badRequest(c, "invalid assigned_to")
				return
			}
			patch.AssignedTo = &assignee
		}
	}

	item, err := h.threads.UpdateItem(c.Request.Context(), threadID, itemID, middleware.UserID(c), patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ThreadHandler) DeleteItem(c *gin.Context) {
	threadID, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	if err := h.threads.DeleteItem(c.Request.Context(), threadID, itemID, middleware.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
