package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
	"gorm.io/gorm"
)

// CreateConnection вставляет новый запрос. Нарушение уникального индекса
// по живой паре означает, что параллельный запрос успел раньше.
func (d *Database) CreateConnection(ctx context.Context, conn *models.Connection) error {
	err := d.db.WithContext(ctx).Create(conn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrDuplicateConnection
	}
	return wrap("create connection", err)
}

func (d *Database) GetConnection(ctx context.Context, id uuid.UUID) (*models.Connection, error) {
	var conn models.Connection
	if err := d.db.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		return nil, wrap("get connection", notFound(err, apperr.ErrConnectionNotFound))
	}
	return &conn, nil
}

// FindPairConnections возвращает все связи пары в событии, новые первыми
func (d *Database) FindPairConnections(ctx context.Context, eventID, a, b uuid.UUID) ([]models.Connection, error) {
	var conns []models.Connection
	err := d.db.WithContext(ctx).
		Where("live_key = ?", models.PairKey(eventID, a, b)).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, wrap("find pair connections", err)
}

// TransitionConnection - условная запись статуса (compare-and-swap).
// false означает, что статус уже не from.
func (d *Database) TransitionConnection(ctx context.Context, id uuid.UUID, from, to models.ConnectionStatus, at time.Time) (bool, error) {
	res := d.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		return false, wrap("transition connection", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ListUserConnections - все связи, где пользователь с любой стороны
func (d *Database) ListUserConnections(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	var conns []models.Connection
	err := d.db.WithContext(ctx).
		Where("requester_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, wrap("list user connections", err)
}
