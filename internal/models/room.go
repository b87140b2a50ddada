package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomMembership - участник общей комнаты события, одна строка на пару (event, user)
type RoomMembership struct {
	EventID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt time.Time `gorm:"not null"`
}

// RoomMessage - сообщение в общем чате события, только добавляется
type RoomMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index:idx_room_messages_order,priority:1"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_room_messages_order,priority:2"`
}

func (m *RoomMessage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
