package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/models"
)

func TestRankedEvents(t *testing.T) {
	f := newFixture(t, ConnectionOptions{AllowRequestAfterDecline: true})
	ctx := context.Background()

	jazz := &models.Event{ID: uuid.New(), Name: "Blue Note", Artist: "Y", Genre: "jazz", StartsAt: time.Date(2026, 10, 20, 20, 0, 0, 0, time.UTC)}
	indie := &models.Event{ID: uuid.New(), Name: "Basement", Artist: "Z", Genre: "Indie Rock", StartsAt: time.Date(2026, 10, 21, 20, 0, 0, 0, time.UTC)}
	require.NoError(t, f.db.SaveEvent(ctx, jazz))
	require.NoError(t, f.db.SaveEvent(ctx, indie))

	events, err := f.catalog.RankedEvents(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, f.event.ID, events[0].ID)
	assert.Equal(t, 80, events[0].Score)
	assert.Equal(t, indie.ID, events[1].ID)
	assert.Equal(t, 65, events[1].Score)
	assert.Equal(t, jazz.ID, events[2].ID)
	assert.Equal(t, 50, events[2].Score)

	// без профиля вкус пустой, все события нейтральны
	events, err = f.catalog.RankedEvents(ctx, uuid.New())
	require.NoError(t, err)
	for _, e := range events {
		assert.Equal(t, 50, e.Score)
	}
}

func TestCatalogEventAndProfile(t *testing.T) {
	f := newFixture(t, ConnectionOptions{AllowRequestAfterDecline: true})
	ctx := context.Background()

	event, err := f.catalog.Event(ctx, f.event.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, 80, event.Score)

	_, err = f.catalog.Event(ctx, uuid.New(), f.bob)
	assert.ErrorIs(t, err, apperr.ErrEventNotFound)

	profile, err := f.catalog.Profile(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, "Bob", profile.DisplayName)
	assert.Equal(t, []string{"rock"}, profile.Taste.Genres)

	_, err = f.catalog.Profile(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}
