package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
)

// SaveProfile используется синхронизацией с сервисом профилей и в тестах
func (d *Database) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return wrap("save profile", d.db.WithContext(ctx).Save(profile).Error)
}

func (d *Database) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := d.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, wrap("get profile", notFound(err, apperr.ErrUserNotFound))
	}
	return &profile, nil
}

// GetProfiles возвращает найденные профили по id, отсутствующие пропускаются
func (d *Database) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error) {
	out := make(map[uuid.UUID]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, wrap("get profiles", err)
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}
