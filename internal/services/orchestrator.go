package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/models"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

// Orchestrator переводит связь в accepted и заводит для нее ровно один тред.
// Это единственное место, которое пишет сразу в два хранилища.
type Orchestrator struct {
	connections ConnectionStore
	threads     ThreadStore
	hub         realtime.Publisher
	log         *logger.Logger
	now         Clock
}

func NewOrchestrator(connections ConnectionStore, threads ThreadStore, hub realtime.Publisher, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		connections: connections,
		threads:     threads,
		hub:         hub,
		log:         log.With("component", "orchestrator"),
		now:         systemClock,
	}
}

// OnAccept принимает связь и возвращает ее тред. Повторный вызов для уже
// принятой связи возвращает тот же тред, отклоненная связь дает already_resolved.
func (o *Orchestrator) OnAccept(ctx context.Context, connectionID uuid.UUID) (*models.Thread, error) {
	conn, err := o.connections.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	thread, _, err := o.accept(ctx, conn)
	return thread, err
}

// EnsureThread - путь восстановления после PartialFailure: повторяет создание
// треда для уже принятой связи. Вызвать может любой из двух участников.
func (o *Orchestrator) EnsureThread(ctx context.Context, connectionID, actingUserID uuid.UUID) (*models.Thread, error) {
	conn, err := o.connections.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.HasUser(actingUserID) {
		return nil, apperr.ErrNotParticipant
	}
	if conn.Status != models.ConnectionAccepted {
		return nil, apperr.ErrNotAccepted
	}
	return o.ensureThread(ctx, conn)
}

// accept возвращает transitioned=true, только если статус перевел этот вызов
func (o *Orchestrator) accept(ctx context.Context, conn *models.Connection) (*models.Thread, bool, error) {
	switch conn.Status {
	case models.ConnectionDeclined:
		return nil, false, apperr.ErrAlreadyResolved
	case models.ConnectionAccepted:
		thread, err := o.ensureThread(ctx, conn)
		return thread, false, err
	}

	at := o.now()
	ok, err := o.connections.TransitionConnection(ctx, conn.ID, models.ConnectionPending, models.ConnectionAccepted, at)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// параллельный вызов успел раньше; сходимся на его результате
		fresh, err := o.connections.GetConnection(ctx, conn.ID)
		if err != nil {
			return nil, false, err
		}
		if fresh.Status != models.ConnectionAccepted {
			return nil, false, apperr.ErrAlreadyResolved
		}
		thread, err := o.ensureThread(ctx, fresh)
		return thread, false, err
	}

	conn.Status = models.ConnectionAccepted
	conn.UpdatedAt = at

	thread, err := o.ensureThread(ctx, conn)
	if err != nil {
		o.publishResolved(ctx, conn, nil)
		return nil, true, err
	}
	o.publishResolved(ctx, conn, &thread.ID)
	return thread, true, nil
}

// ensureThread: связь уже accepted, создание треда идемпотентно
func (o *Orchestrator) ensureThread(ctx context.Context, conn *models.Connection) (*models.Thread, error) {
	thread, created, err := o.threads.CreateThreadForConnection(ctx, conn, o.now())
	if err != nil {
		o.log.Error("thread creation failed for accepted connection",
			"connection_id", conn.ID, "error", err)
		return nil, apperr.PartialFailure(apperr.CodeThreadCreateFailed,
			"connection accepted but thread was not created", err)
	}

	if created {
		o.log.Info("thread created", "thread_id", thread.ID, "connection_id", conn.ID)
		payload := dto.NewThread(thread)
		for _, userID := range []uuid.UUID{conn.RequesterID, conn.RecipientID} {
			if _, err := o.hub.Publish(ctx, realtime.UserChannel(userID), realtime.TypeThreadCreated, payload); err != nil {
				o.log.Warn("publish thread created failed", "user_id", userID, "error", err)
			}
		}
	}
	return thread, nil
}

// threadsByConnection - id тредов пользователя по id связи
func (o *Orchestrator) threadsByConnection(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	threads, err := o.threads.ListUserThreads(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]uuid.UUID, len(threads))
	for _, t := range threads {
		out[t.ConnectionID] = t.ID
	}
	return out, nil
}

func (o *Orchestrator) publishResolved(ctx context.Context, conn *models.Connection, threadID *uuid.UUID) {
	publishConnection(ctx, o.hub, o.log, conn, realtime.TypeConnectionResolved, threadID)
}

// publishConnection рассылает связь в личные каналы обеих сторон,
// каждой со своей категорией
func publishConnection(ctx context.Context, hub realtime.Publisher, log *logger.Logger, conn *models.Connection, typ realtime.EventType, threadID *uuid.UUID) {
	for _, userID := range []uuid.UUID{conn.RequesterID, conn.RecipientID} {
		payload := dto.NewConnection(conn, userID)
		payload.ThreadID = threadID
		if _, err := hub.Publish(ctx, realtime.UserChannel(userID), typ, payload); err != nil {
			log.Warn("publish connection event failed", "type", typ, "user_id", userID, "error", err)
		}
	}
}
