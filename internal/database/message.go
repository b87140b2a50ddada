package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/models"
)

func (d *Database) SaveRoomMessage(ctx context.Context, message *models.RoomMessage) error {
	return wrap("save room message", d.db.WithContext(ctx).Create(message).Error)
}

// ListRoomMessages отдает всю историю комнаты по (created_at, id)
func (d *Database) ListRoomMessages(ctx context.Context, eventID uuid.UUID) ([]models.RoomMessage, error) {
	var messages []models.RoomMessage
	err := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, wrap("list room messages", err)
}

func (d *Database) SaveThreadMessage(ctx context.Context, message *models.ThreadMessage) error {
	return wrap("save thread message", d.db.WithContext(ctx).Create(message).Error)
}

func (d *Database) ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]models.ThreadMessage, error) {
	var messages []models.ThreadMessage
	err := d.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, wrap("list thread messages", err)
}
