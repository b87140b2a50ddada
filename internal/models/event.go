package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/matching"
)

// Event - концерт из каталога событий, после публикации не меняется
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Artist    string    `gorm:"not null"`
	Genre     string    `gorm:"not null"`
	Venue     string
	StartsAt  time.Time `gorm:"index"`
	ImageURL  string
	CreatedAt time.Time
}

func (e *Event) Taste() matching.EventTaste {
	return matching.EventTaste{Genre: e.Genre, Artist: e.Artist}
}
