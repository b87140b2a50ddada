package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/models"
)

type Thread struct {
	ID            uuid.UUID          `json:"id"`
	EventID       uuid.UUID          `json:"event_id"`
	ConnectionID  uuid.UUID          `json:"connection_id"`
	Participants  []uuid.UUID        `json:"participants"`
	GoingTogether map[uuid.UUID]bool `json:"going_together"`
	BothGoing     bool               `json:"both_going"`
	CreatedAt     time.Time          `json:"created_at"`
}

func NewThread(t *models.Thread) Thread {
	return Thread{
		ID:            t.ID,
		EventID:       t.EventID,
		ConnectionID:  t.ConnectionID,
		Participants:  t.ParticipantIDs(),
		GoingTogether: t.GoingTogether(),
		BothGoing:     t.BothGoing(),
		CreatedAt:     t.CreatedAt,
	}
}

type ChecklistItem struct {
	ID          uuid.UUID  `json:"id"`
	ThreadID    uuid.UUID  `json:"thread_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewChecklistItem(i *models.ChecklistItem) ChecklistItem {
	return ChecklistItem{
		ID:          i.ID,
		ThreadID:    i.ThreadID,
		Title:       i.Title,
		IsCompleted: i.IsCompleted,
		AssignedTo:  i.AssignedTo,
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func NewChecklist(items []models.ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, len(items))
	for i := range items {
		out[i] = NewChecklistItem(&items[i])
	}
	return out
}

// ChecklistItemDeleted - полезная нагрузка события удаления
type ChecklistItemDeleted struct {
	ID       uuid.UUID `json:"id"`
	ThreadID uuid.UUID `json:"thread_id"`
}

// GoingTogether - ответ на установку флага; Mutual true только у вызова,
// который сделал оба флага true
type GoingTogether struct {
	Thread Thread `json:"thread"`
	Mutual bool   `json:"mutual"`
}

// Mutual - разовое событие взаимного подтверждения
type Mutual struct {
	ThreadID     uuid.UUID `json:"thread_id"`
	ConnectionID uuid.UUID `json:"connection_id"`
	EventID      uuid.UUID `json:"event_id"`
	ConfirmedBy  uuid.UUID `json:"confirmed_by"`
	At           time.Time `json:"at"`
}

// ThreadSnapshot - полное состояние треда для ресинхронизации подписчика
type ThreadSnapshot struct {
	Thread    Thread          `json:"thread"`
	Messages  []ThreadMessage `json:"messages"`
	Checklist []ChecklistItem `json:"checklist"`
}
