package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func preloadParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// CreateThreadForConnection создает тред для связи, если его еще нет.
// Уникальный индекс по connection_id сводит повторные вызовы к одной записи.
func (d *Database) CreateThreadForConnection(ctx context.Context, conn *models.Connection, at time.Time) (*models.Thread, bool, error) {
	var (
		threadID uuid.UUID
		created  bool
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		thread := models.Thread{
			EventID:      conn.EventID,
			ConnectionID: conn.ID,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "connection_id"}}, DoNothing: true}).
			Create(&thread)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var existing models.Thread
			if err := tx.First(&existing, "connection_id = ?", conn.ID).Error; err != nil {
				return err
			}
			threadID = existing.ID
			return nil
		}

		participants := []models.ThreadParticipant{
			{ThreadID: thread.ID, UserID: conn.RequesterID, Position: 0, UpdatedAt: at},
			{ThreadID: thread.ID, UserID: conn.RecipientID, Position: 1, UpdatedAt: at},
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}

		threadID = thread.ID
		created = true
		return nil
	})
	if err != nil {
		return nil, false, wrap("create thread", err)
	}

	thread, err := d.GetThread(ctx, threadID)
	if err != nil {
		return nil, false, err
	}
	return thread, created, nil
}

func (d *Database) GetThread(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	var thread models.Thread
	if err := preloadParticipants(d.db.WithContext(ctx)).First(&thread, "id = ?", id).Error; err != nil {
		return nil, wrap("get thread", notFound(err, apperr.ErrThreadNotFound))
	}
	return &thread, nil
}

func (d *Database) GetThreadByConnection(ctx context.Context, connectionID uuid.UUID) (*models.Thread, error) {
	var thread models.Thread
	err := preloadParticipants(d.db.WithContext(ctx)).First(&thread, "connection_id = ?", connectionID).Error
	if err != nil {
		return nil, wrap("get thread by connection", notFound(err, apperr.ErrThreadNotFound))
	}
	return &thread, nil
}

// ListUserThreads - треды, где пользователь участник
func (d *Database) ListUserThreads(ctx context.Context, userID uuid.UUID) ([]models.Thread, error) {
	var threads []models.Thread
	err := preloadParticipants(d.db.WithContext(ctx)).
		Where("id IN (?)", d.db.Model(&models.ThreadParticipant{}).Select("thread_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&threads).Error
	return threads, wrap("list user threads", err)
}

// SetGoingTogether ставит флаг пользователя и определяет момент, когда оба стали true.
// Транзакция начинается с записи в строку треда, поэтому параллельные вызовы
// по одному треду выполняются по очереди и фронт видит только один из них.
func (d *Database) SetGoingTogether(ctx context.Context, threadID, userID uuid.UUID, value bool, at time.Time) (*models.GoingTogetherChange, error) {
	change := &models.GoingTogetherChange{}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Thread{}).Where("id = ?", threadID).Update("updated_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrThreadNotFound
		}

		var participants []models.ThreadParticipant
		if err := tx.Where("thread_id = ?", threadID).Order("position ASC").Find(&participants).Error; err != nil {
			return err
		}

		var self, other *models.ThreadParticipant
		for i := range participants {
			if participants[i].UserID == userID {
				self = &participants[i]
			} else {
				other = &participants[i]
			}
		}
		if self == nil {
			return apperr.ErrNotParticipant
		}
		if self.GoingTogether == value {
			return nil
		}

		err := tx.Model(&models.ThreadParticipant{}).
			Where("thread_id = ? AND user_id = ?", threadID, userID).
			Updates(map[string]interface{}{"going_together": value, "updated_at": at}).Error
		if err != nil {
			return err
		}

		change.Changed = true
		change.Mutual = value && other != nil && other.GoingTogether
		return nil
	})
	if err != nil {
		return nil, wrap("set going together", err)
	}

	thread, err := d.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	change.Thread = thread
	return change, nil
}
