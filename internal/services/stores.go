package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/database"
	"github.com/thereayou/gigmate/internal/models"
)

// RoomStore - членство и общий чат события
type RoomStore interface {
	JoinRoom(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error)
	IsRoomMember(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	ListRoomMembers(ctx context.Context, eventID uuid.UUID) ([]models.RoomMembership, error)
	ListJoinedRooms(ctx context.Context, userID uuid.UUID) ([]models.RoomMembership, error)
	SaveRoomMessage(ctx context.Context, message *models.RoomMessage) error
	ListRoomMessages(ctx context.Context, eventID uuid.UUID) ([]models.RoomMessage, error)
}

type ConnectionStore interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnection(ctx context.Context, id uuid.UUID) (*models.Connection, error)
	FindPairConnections(ctx context.Context, eventID, a, b uuid.UUID) ([]models.Connection, error)
	TransitionConnection(ctx context.Context, id uuid.UUID, from, to models.ConnectionStatus, at time.Time) (bool, error)
	ListUserConnections(ctx context.Context, userID uuid.UUID) ([]models.Connection, error)
}

type ThreadStore interface {
	CreateThreadForConnection(ctx context.Context, conn *models.Connection, at time.Time) (*models.Thread, bool, error)
	GetThread(ctx context.Context, id uuid.UUID) (*models.Thread, error)
	GetThreadByConnection(ctx context.Context, connectionID uuid.UUID) (*models.Thread, error)
	ListUserThreads(ctx context.Context, userID uuid.UUID) ([]models.Thread, error)
	SetGoingTogether(ctx context.Context, threadID, userID uuid.UUID, value bool, at time.Time) (*models.GoingTogetherChange, error)

	SaveThreadMessage(ctx context.Context, message *models.ThreadMessage) error
	ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]models.ThreadMessage, error)

	CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) (*models.ChecklistItem, error)
	ListChecklistItems(ctx context.Context, threadID uuid.UUID) ([]models.ChecklistItem, error)
	ToggleChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, threadID, itemID uuid.UUID, fields map[string]interface{}) (*models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, threadID, itemID uuid.UUID) error
}

// ProfileDirectory - профили и вкусы, ведутся внешним сервисом
type ProfileDirectory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Profile, error)
}

// EventCatalog - каталог концертов, только чтение
type EventCatalog interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Presence сообщает, есть ли у пользователя живое websocket-соединение
type Presence interface {
	IsOnline(userID uuid.UUID) bool
}

// Clock - источник времени, подменяется в тестах
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

var (
	_ RoomStore        = (*database.Database)(nil)
	_ ConnectionStore  = (*database.Database)(nil)
	_ ThreadStore      = (*database.Database)(nil)
	_ ProfileDirectory = (*database.Database)(nil)
	_ EventCatalog     = (*database.Database)(nil)
)
