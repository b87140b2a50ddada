package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/models"
)

// Категории связи с точки зрения пользователя
const (
	CategoryIncoming = "incoming"
	CategorySent     = "sent"
	CategoryAccepted = "accepted"
	CategoryDeclined = "declined"
)

// Статус пары в событии
const (
	PairNone     = "none"
	PairPending  = "pending"
	PairAccepted = "accepted"
	PairDeclined = "declined"
)

type Connection struct {
	ID          uuid.UUID               `json:"id"`
	EventID     uuid.UUID               `json:"event_id"`
	RequesterID uuid.UUID               `json:"requester_id"`
	RecipientID uuid.UUID               `json:"recipient_id"`
	Status      models.ConnectionStatus `json:"status"`
	Category    string                  `json:"category,omitempty"`
	ThreadID    *uuid.UUID              `json:"thread_id,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// Category раскладывает связь по спискам incoming/sent/accepted/declined
func Category(c *models.Connection, userID uuid.UUID) string {
	switch c.Status {
	case models.ConnectionAccepted:
		return CategoryAccepted
	case models.ConnectionDeclined:
		return CategoryDeclined
	}
	if c.RecipientID == userID {
		return CategoryIncoming
	}
	return CategorySent
}

// NewConnection; viewer == uuid.Nil оставляет категорию пустой
func NewConnection(c *models.Connection, viewer uuid.UUID) Connection {
	out := Connection{
		ID:          c.ID,
		EventID:     c.EventID,
		RequesterID: c.RequesterID,
		RecipientID: c.RecipientID,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if viewer != uuid.Nil {
		out.Category = Category(c, viewer)
	}
	return out
}

type RespondResult struct {
	Status   models.ConnectionStatus `json:"status"`
	ThreadID *uuid.UUID              `json:"thread_id,omitempty"`
}

type PairStatus struct {
	Status       string     `json:"status"`
	ConnectionID *uuid.UUID `json:"connection_id,omitempty"`
	// Incoming - ожидающий запрос пришел от собеседника
	Incoming bool `json:"incoming,omitempty"`
}
