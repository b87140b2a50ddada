package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/database/dbtest"
	"github.com/thereayou/gigmate/internal/models"
)

func TestJoinRoomIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	eventID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	joined, err := db.JoinRoom(ctx, eventID, userID, now)
	require.NoError(t, err)
	assert.True(t, joined)

	joined, err = db.JoinRoom(ctx, eventID, userID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, joined)

	members, err := db.ListRoomMembers(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].UserID)
	assert.WithinDuration(t, now, members[0].JoinedAt, time.Millisecond)

	isMember, err := db.IsRoomMember(ctx, eventID, userID)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = db.IsRoomMember(ctx, uuid.New(), userID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestListJoinedRooms(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	userID := uuid.New()
	first, second := uuid.New(), uuid.New()
	now := time.Now().UTC()

	_, err := db.JoinRoom(ctx, first, userID, now)
	require.NoError(t, err)
	_, err = db.JoinRoom(ctx, second, userID, now.Add(time.Second))
	require.NoError(t, err)
	_, err = db.JoinRoom(ctx, second, uuid.New(), now)
	require.NoError(t, err)

	rooms, err := db.ListJoinedRooms(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, second, rooms[0].EventID)
	assert.Equal(t, first, rooms[1].EventID)
}

func TestListRoomMessagesOrderedByTimeThenID(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	eventID, author := uuid.New(), uuid.New()
	t1 := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Millisecond)
	t3 := t2.Add(time.Millisecond)

	sameA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	sameB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	inserts := []models.RoomMessage{
		{EventID: eventID, AuthorID: author, Content: "third", CreatedAt: t3},
		{ID: sameB, EventID: eventID, AuthorID: author, Content: "second-b", CreatedAt: t2},
		{EventID: eventID, AuthorID: author, Content: "first", CreatedAt: t1},
		{ID: sameA, EventID: eventID, AuthorID: author, Content: "second-a", CreatedAt: t2},
		{EventID: uuid.New(), AuthorID: author, Content: "other room", CreatedAt: t1},
	}
	for i := range inserts {
		require.NoError(t, db.SaveRoomMessage(ctx, &inserts[i]))
	}

	messages, err := db.ListRoomMessages(ctx, eventID)
	require.NoError(t, err)

	contents := make([]string, len(messages))
	for i, m := range messages {
		contents[i] = m.Content
	}
	assert.Equal(t, []string{"first", "second-a", "second-b", "third"}, contents)
}
