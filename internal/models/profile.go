package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/matching"
	"gorm.io/datatypes"
)

// Profile - снимок профиля, который ведет сервис профилей.
// Здесь таблица только читается.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DisplayName string    `gorm:"not null"`
	AvatarURL   string
	Genres      datatypes.JSONSlice[string]
	Artists     datatypes.JSONSlice[string]
	BudgetTier  string `gorm:"not null;default:'flexible'"`
	Vibes       datatypes.JSONSlice[string]
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Profile) Taste() matching.UserTaste {
	vibes := make([]matching.Vibe, len(p.Vibes))
	for i, v := range p.Vibes {
		vibes[i] = matching.Vibe(v)
	}
	return matching.UserTaste{
		Genres:  []string(p.Genres),
		Artists: []string(p.Artists),
		Budget:  matching.BudgetTier(p.BudgetTier),
		Vibes:   vibes,
	}
}
