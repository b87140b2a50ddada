package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/models"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionAccept, DecisionDecline:
		return d, nil
	}
	return "", apperr.ErrInvalidDecision
}

type ConnectionOptions struct {
	// AllowRequestAfterDecline: false - отклоненная связь тоже блокирует новый запрос
	AllowRequestAfterDecline bool
}

// ConnectionService - запросы на общение и ответы на них
type ConnectionService struct {
	connections  ConnectionStore
	rooms        RoomStore
	events       EventCatalog
	orchestrator *Orchestrator
	hub          realtime.Publisher
	opts         ConnectionOptions
	log          *logger.Logger
	now          Clock
}

func NewConnectionService(
	connections ConnectionStore,
	rooms RoomStore,
	events EventCatalog,
	orchestrator *Orchestrator,
	hub realtime.Publisher,
	opts ConnectionOptions,
	log *logger.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections:  connections,
		rooms:        rooms,
		events:       events,
		orchestrator: orchestrator,
		hub:          hub,
		opts:         opts,
		log:          log.With("component", "connection_service"),
		now:          systemClock,
	}
}

// Request создает ожидающую связь. Оба пользователя должны быть в комнате события.
func (s *ConnectionService) Request(ctx context.Context, eventID, requesterID, recipientID uuid.UUID) (*models.Connection, error) {
	if requesterID == recipientID {
		return nil, apperr.ErrSelfConnection
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	for _, userID := range []uuid.UUID{requesterID, recipientID} {
		ok, err := s.rooms.IsRoomMember(ctx, eventID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.ErrNotRoomMember
		}
	}

	existing, err := s.connections.FindPairConnections(ctx, eventID, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Status != models.ConnectionDeclined || !s.opts.AllowRequestAfterDecline {
			return nil, apperr.ErrDuplicateConnection
		}
	}

	at := s.now()
	conn := &models.Connection{
		EventID:     eventID,
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      models.ConnectionPending,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	// гонку двух параллельных запросов ловит уникальный индекс live_key
	if err := s.connections.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	publishConnection(ctx, s.hub, s.log, conn, realtime.TypeConnectionRequested, nil)
	return conn, nil
}

// Respond - ответ получателя. Повторный или параллельный второй ответ
// получает already_resolved, тред при этом остается один.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, actingUserID uuid.UUID, decision Decision) (dto.RespondResult, error) {
	conn, err := s.connections.GetConnection(ctx, connectionID)
	if err != nil {
		return dto.RespondResult{}, err
	}
	if conn.RecipientID != actingUserID {
		return dto.RespondResult{}, apperr.ErrNotRecipient
	}
	if conn.Status != models.ConnectionPending {
		return dto.RespondResult{}, apperr.ErrAlreadyResolved
	}

	switch decision {
	case DecisionAccept:
		thread, transitioned, err := s.orchestrator.accept(ctx, conn)
		switch {
		case transitioned && err != nil:
			return dto.RespondResult{Status: models.ConnectionAccepted}, err
		case transitioned:
			return dto.RespondResult{Status: models.ConnectionAccepted, ThreadID: &thread.ID}, nil
		case err != nil && apperr.KindOf(err) == "":
			return dto.RespondResult{}, err
		}
		// связь успел разрешить параллельный вызов
		return dto.RespondResult{}, apperr.ErrAlreadyResolved

	case DecisionDecline:
		at := s.now()
		ok, err := s.connections.TransitionConnection(ctx, conn.ID, models.ConnectionPending, models.ConnectionDeclined, at)
		if err != nil {
			return dto.RespondResult{}, err
		}
		if !ok {
			return dto.RespondResult{}, apperr.ErrAlreadyResolved
		}
		conn.Status = models.ConnectionDeclined
		conn.UpdatedAt = at
		publishConnection(ctx, s.hub, s.log, conn, realtime.TypeConnectionResolved, nil)
		return dto.RespondResult{Status: models.ConnectionDeclined}, nil
	}
	return dto.RespondResult{}, apperr.ErrInvalidDecision
}

// ListForUser - все связи пользователя с категорией incoming/sent/accepted/declined;
// у принятых заполнен thread_id
func (s *ConnectionService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.Connection, error) {
	conns, err := s.connections.ListUserConnections(ctx, userID)
	if err != nil {
		return nil, err
	}
	threadIDs, err := s.orchestrator.threadsByConnection(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.Connection, len(conns))
	for i := range conns {
		out[i] = dto.NewConnection(&conns[i], userID)
		if conns[i].Status != models.ConnectionAccepted {
			continue
		}
		if id, ok := threadIDs[conns[i].ID]; ok {
			out[i].ThreadID = &id
		}
	}
	return out, nil
}

// PairStatus - состояние пары в событии: живая связь важнее отклоненных
func (s *ConnectionService) PairStatus(ctx context.Context, eventID, selfID, otherID uuid.UUID) (dto.PairStatus, error) {
	conns, err := s.connections.FindPairConnections(ctx, eventID, selfID, otherID)
	if err != nil {
		return dto.PairStatus{}, err
	}
	if len(conns) == 0 {
		return dto.PairStatus{Status: dto.PairNone}, nil
	}

	picked := &conns[0]
	for i := range conns {
		if conns[i].Status != models.ConnectionDeclined {
			picked = &conns[i]
			break
		}
	}

	out := dto.PairStatus{ConnectionID: &picked.ID}
	switch picked.Status {
	case models.ConnectionPending:
		out.Status = dto.PairPending
		out.Incoming = picked.RecipientID == selfID
	case models.ConnectionAccepted:
		out.Status = dto.PairAccepted
	default:
		out.Status = dto.PairDeclined
	}
	return out, nil
}
