package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/database/dbtest"
	"github.com/thereayou/gigmate/internal/models"
)

func TestChecklistLifecycle(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	threadID, creator := uuid.New(), uuid.New()
	now := time.Now().UTC()

	tickets := &models.ChecklistItem{ThreadID: threadID, Title: "buy tickets", CreatedBy: creator, CreatedAt: now}
	ride := &models.ChecklistItem{ThreadID: threadID, Title: "book a ride", CreatedBy: creator, CreatedAt: now.Add(time.Second)}
	require.NoError(t, db.CreateChecklistItem(ctx, tickets))
	require.NoError(t, db.CreateChecklistItem(ctx, ride))

	toggled, err := db.ToggleChecklistItem(ctx, threadID, tickets.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)

	toggled, err = db.ToggleChecklistItem(ctx, threadID, tickets.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsCompleted)

	updated, err := db.UpdateChecklistItem(ctx, threadID, ride.ID, map[string]interface{}{"title": "book an uber", "assigned_to": creator})
	require.NoError(t, err)
	assert.Equal(t, "book an uber", updated.Title)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, creator, *updated.AssignedTo)

	require.NoError(t, db.DeleteChecklistItem(ctx, threadID, tickets.ID))
	assert.ErrorIs(t, db.DeleteChecklistItem(ctx, threadID, tickets.ID), apperr.ErrItemNotFound)

	items, err := db.ListChecklistItems(ctx, threadID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ride.ID, items[0].ID)
}

func TestChecklistItemScopedToThread(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	item := &models.ChecklistItem{ThreadID: uuid.New(), Title: "snacks", CreatedBy: uuid.New(), CreatedAt: time.Now().UTC()}
	require.NoError(t, db.CreateChecklistItem(ctx, item))

	_, err := db.ToggleChecklistItem(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, apperr.ErrItemNotFound)
}
