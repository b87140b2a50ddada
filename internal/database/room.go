package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/models"
	"gorm.io/gorm/clause"
)

// JoinRoom добавляет участника; повторный вход ничего не меняет.
// joined=true только если строка действительно создана.
func (d *Database) JoinRoom(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error) {
	membership := models.RoomMembership{EventID: eventID, UserID: userID, JoinedAt: at}

	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership)
	if res.Error != nil {
		return false, wrap("join room", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (d *Database) IsRoomMember(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).
		Model(&models.RoomMembership{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	if err != nil {
		return false, wrap("check room member", err)
	}
	return count > 0, nil
}

func (d *Database) ListRoomMembers(ctx context.Context, eventID uuid.UUID) ([]models.RoomMembership, error) {
	var members []models.RoomMembership
	err := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, wrap("list room members", err)
}

// ListJoinedRooms возвращает комнаты, в которые вошел пользователь
func (d *Database) ListJoinedRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomMembership, error) {
	var members []models.RoomMembership
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&members).Error
	return members, wrap("list joined rooms", err)
}
