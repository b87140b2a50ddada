package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/matching"
	"github.com/thereayou/gigmate/internal/models"
)

// CatalogService отдает события и профили с оценкой под конкретного пользователя
type CatalogService struct {
	events   EventCatalog
	profiles ProfileDirectory
}

func NewCatalogService(events EventCatalog, profiles ProfileDirectory) *CatalogService {
	return &CatalogService{events: events, profiles: profiles}
}

// RankedEvents - события по убыванию EventMatchScore, равные в исходном порядке
func (s *CatalogService) RankedEvents(ctx context.Context, userID uuid.UUID) ([]dto.Event, error) {
	taste, err := s.tasteOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	events = matching.SortEventsByPreference(events, taste, func(e models.Event) matching.EventTaste {
		return e.Taste()
	})

	out := make([]dto.Event, len(events))
	for i := range events {
		out[i] = dto.NewEvent(&events[i], matching.EventMatchScore(taste, events[i].Taste()))
	}
	return out, nil
}

func (s *CatalogService) Event(ctx context.Context, eventID, userID uuid.UUID) (dto.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return dto.Event{}, err
	}
	taste, err := s.tasteOf(ctx, userID)
	if err != nil {
		return dto.Event{}, err
	}
	return dto.NewEvent(event, matching.EventMatchScore(taste, event.Taste())), nil
}

func (s *CatalogService) Profile(ctx context.Context, userID uuid.UUID) (dto.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return dto.Profile{}, err
	}
	return dto.NewProfile(profile), nil
}

// tasteOf: пользователь без профиля получает пустой вкус, это нейтрально для оценки
func (s *CatalogService) tasteOf(ctx context.Context, userID uuid.UUID) (matching.UserTaste, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, apperr.ErrUserNotFound) {
		return matching.UserTaste{}, nil
	}
	if err != nil {
		return matching.UserTaste{}, err
	}
	return profile.Taste(), nil
}
