package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/gigmate/internal/database"
	"github.com/thereayou/gigmate/internal/database/dbtest"
	"github.com/thereayou/gigmate/internal/models"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

// stepClock отдает строго растущее время с шагом в миллисекунду
func stepClock(start time.Time) Clock {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Millisecond)
		return current
	}
}

type fixture struct {
	db  *database.Database
	hub *realtime.Hub

	rooms    *RoomService
	conns    *ConnectionService
	orch     *Orchestrator
	threads  *ThreadService
	catalog  *CatalogService
	event    *models.Event
	alice    uuid.UUID
	bob      uuid.UUID
	outsider uuid.UUID
}

func newFixture(t *testing.T, opts ConnectionOptions) *fixture {
	t.Helper()
	return newFixtureWithThreads(t, opts, nil)
}

// newFixtureWithThreads позволяет подменить хранилище тредов оркестратора
func newFixtureWithThreads(t *testing.T, opts ConnectionOptions, threads ThreadStore) *fixture {
	t.Helper()
	ctx := context.Background()

	db := dbtest.New(t)
	hub := realtime.NewHub(64, logger.Nop())
	if threads == nil {
		threads = db
	}

	f := &fixture{
		db:       db,
		hub:      hub,
		alice:    uuid.New(),
		bob:      uuid.New(),
		outsider: uuid.New(),
		event: &models.Event{
			ID:       uuid.New(),
			Name:     "Night Show",
			Artist:   "X",
			Genre:    "rock",
			StartsAt: time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, db.SaveEvent(ctx, f.event))

	for id, name := range map[uuid.UUID]string{f.alice: "Alice", f.bob: "Bob", f.outsider: "Olga"} {
		require.NoError(t, db.SaveProfile(ctx, &models.Profile{
			ID:          id,
			DisplayName: name,
			Genres:      []string{"rock"},
			BudgetTier:  "mid",
		}))
	}

	clock := stepClock(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))

	f.rooms = NewRoomService(db, db, db, hub, logger.Nop())
	f.rooms.now = clock
	f.orch = NewOrchestrator(db, threads, hub, logger.Nop())
	f.orch.now = clock
	f.conns = NewConnectionService(db, db, db, f.orch, hub, opts, logger.Nop())
	f.conns.now = clock
	f.threads = NewThreadService(db, db, hub, logger.Nop())
	f.threads.now = clock
	f.catalog = NewCatalogService(db, db)

	require.NoError(t, f.rooms.Join(ctx, f.event.ID, f.alice))
	require.NoError(t, f.rooms.Join(ctx, f.event.ID, f.bob))
	return f
}

// acceptedThread проводит связь alice -> bob до принятия и возвращает тред
func (f *fixture) acceptedThread(t *testing.T) *models.Thread {
	t.Helper()
	ctx := context.Background()

	conn, err := f.conns.Request(ctx, f.event.ID, f.alice, f.bob)
	require.NoError(t, err)
	res, err := f.conns.Respond(ctx, conn.ID, f.bob, DecisionAccept)
	require.NoError(t, err)
	require.NotNil(t, res.ThreadID)

	thread, err := f.threads.GetByID(ctx, *res.ThreadID)
	require.NoError(t, err)
	return thread
}

func nextEvent(t *testing.T, sub *realtime.Subscription) realtime.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return realtime.Event{}
}

func drain(sub *realtime.Subscription) []realtime.Event {
	var out []realtime.Event
	for {
		select {
		case ev := <-sub.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}
