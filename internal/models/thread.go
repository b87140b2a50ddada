package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread - приватное пространство пары, ровно одно на принятую связь
type Thread struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ConnectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Participants []ThreadParticipant `gorm:"foreignKey:ThreadID"`
}

func (t *Thread) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// ThreadParticipant хранит флаг "идем вместе" отдельной строкой на пользователя:
// каждый пишет только свою строку.
type ThreadParticipant struct {
	ThreadID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position      int       `gorm:"not null"`
	GoingTogether bool      `gorm:"not null;default:false"`
	UpdatedAt     time.Time
}

// ParticipantIDs возвращает [requester, recipient]
func (t *Thread) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Participants))
	for _, p := range t.Participants {
		if p.Position >= 0 && p.Position < len(ids) {
			ids[p.Position] = p.UserID
		}
	}
	return ids
}

func (t *Thread) HasParticipant(userID uuid.UUID) bool {
	for _, p := range t.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (t *Thread) GoingTogether() map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(t.Participants))
	for _, p := range t.Participants {
		out[p.UserID] = p.GoingTogether
	}
	return out
}

// BothGoing - оба участника подтвердили
func (t *Thread) BothGoing() bool {
	if len(t.Participants) != 2 {
		return false
	}
	return t.Participants[0].GoingTogether && t.Participants[1].GoingTogether
}

type ThreadMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;index:idx_thread_messages_order,priority:1"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_thread_messages_order,priority:2"`
}

func (m *ThreadMessage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// ChecklistItem - общий список дел пары, править может любой участник
type ChecklistItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ThreadID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_checklist_order,priority:1"`
	Title       string     `gorm:"not null"`
	IsCompleted bool       `gorm:"not null;default:false"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_checklist_order,priority:2"`
	UpdatedAt   time.Time
}

func (i *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// GoingTogetherChange - результат установки флага "идем вместе"
type GoingTogetherChange struct {
	Thread  *Thread
	Changed bool
	// Mutual - именно этот вызов сделал оба флага true
	Mutual bool
}
