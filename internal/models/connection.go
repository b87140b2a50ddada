package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection - запрос на общение между двумя участниками одного события.
// LiveKey одинаков для пары в любом направлении; частичный уникальный индекс
// не дает завести вторую неотклоненную связь.
type Connection struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	EventID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	RequesterID uuid.UUID        `gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status      ConnectionStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	LiveKey     string           `gorm:"not null;index;uniqueIndex:idx_connections_live,where:status <> 'declined'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	if c.LiveKey == "" {
		c.LiveKey = PairKey(c.EventID, c.RequesterID, c.RecipientID)
	}
	return nil
}

// PairKey - ключ неупорядоченной пары пользователей в рамках события
func PairKey(eventID, a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return eventID.String() + ":" + x + ":" + y
}

func (c *Connection) HasUser(userID uuid.UUID) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// Other возвращает второго участника связи
func (c *Connection) Other(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case c.RequesterID:
		return c.RecipientID, true
	case c.RecipientID:
		return c.RequesterID, true
	}
	return uuid.Nil, false
}
