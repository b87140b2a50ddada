package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/matching"
	"github.com/thereayou/gigmate/internal/models"
)

type Event struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Artist   string    `json:"artist"`
	Genre    string    `json:"genre"`
	Venue    string    `json:"venue,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	ImageURL string    `json:"image_url,omitempty"`
	Score    int       `json:"score"`
}

func NewEvent(e *models.Event, score int) Event {
	return Event{
		ID:       e.ID,
		Name:     e.Name,
		Artist:   e.Artist,
		Genre:    e.Genre,
		Venue:    e.Venue,
		StartsAt: e.StartsAt,
		ImageURL: e.ImageURL,
		Score:    score,
	}
}

// Member - участник комнаты с оценкой совместимости относительно зрителя
type Member struct {
	UserInfo
	Score    int       `json:"score"`
	IsOnline bool      `json:"is_online"`
	JoinedAt time.Time `json:"joined_at"`
}

type Profile struct {
	UserInfo
	Taste matching.UserTaste `json:"taste"`
}

func NewProfile(p *models.Profile) Profile {
	return Profile{UserInfo: NewUserInfo(p.ID, p), Taste: p.Taste()}
}
