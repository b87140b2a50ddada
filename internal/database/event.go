package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
)

func (d *Database) SaveEvent(ctx context.Context, event *models.Event) error {
	return wrap("save event", d.db.WithContext(ctx).Save(event).Error)
}

func (d *Database) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := d.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, wrap("get event", notFound(err, apperr.ErrEventNotFound))
	}
	return &event, nil
}

func (d *Database) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.db.WithContext(ctx).Order("starts_at ASC").Find(&events).Error
	return events, wrap("list events", err)
}
