package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	return wrap("create checklist item", d.db.WithContext(ctx).Create(item).Error)
}

func (d *Database) GetChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	err := d.db.WithContext(ctx).First(&item, "id = ? AND thread_id = ?", itemID, threadID).Error
	if err != nil {
		return nil, wrap("get checklist item", notFound(err, apperr.ErrItemNotFound))
	}
	return &item, nil
}

func (d *Database) ListChecklistItems(ctx context.Context, threadID uuid.UUID) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := d.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, wrap("list checklist items", err)
}

// ToggleChecklistItem инвертирует флаг одним UPDATE, без чтения перед записью
func (d *Database) ToggleChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) (*models.ChecklistItem, error) {
	return d.UpdateChecklistItem(ctx, threadID, itemID, map[string]interface{}{
		"is_completed": gorm.Expr("NOT is_completed"),
	})
}

// UpdateChecklistItem применяет частичное обновление и возвращает свежую версию
func (d *Database) UpdateChecklistItem(ctx context.Context, threadID, itemID uuid.UUID, fields map[string]interface{}) (*models.ChecklistItem, error) {
	res := d.db.WithContext(ctx).
		Model(&models.ChecklistItem{}).
		Where("id = ? AND thread_id = ?", itemID, threadID).
		Updates(fields)
	if res.Error != nil {
		return nil, wrap("update checklist item", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrItemNotFound
	}
	return d.GetChecklistItem(ctx, threadID, itemID)
}

func (d *Database) DeleteChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) error {
	res := d.db.WithContext(ctx).Delete(&models.ChecklistItem{}, "id = ? AND thread_id = ?", itemID, threadID)
	if res.Error != nil {
		return wrap("delete checklist item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrItemNotFound
	}
	return nil
}
