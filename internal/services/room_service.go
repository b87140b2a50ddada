package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/apperr"
	"github.com/thereayou/gigmate/internal/dto"
	"github.com/thereayou/gigmate/internal/matching"
	"github.com/thereayou/gigmate/internal/models"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/pkg/logger"
)

// RoomService - общая комната события: участники и публичный чат
type RoomService struct {
	rooms    RoomStore
	events   EventCatalog
	profiles ProfileDirectory
	presence Presence
	hub      realtime.Publisher
	log      *logger.Logger
	now      Clock
}

func NewRoomService(rooms RoomStore, events EventCatalog, profiles ProfileDirectory, hub realtime.Publisher, log *logger.Logger) *RoomService {
	return &RoomService{
		rooms:    rooms,
		events:   events,
		profiles: profiles,
		hub:      hub,
		log:      log.With("component", "room_service"),
		now:      systemClock,
	}
}

// SetPresence подключает источник статуса онлайн для списка участников
func (s *RoomService) SetPresence(p Presence) {
	s.presence = p
}

// Join идемпотентен: повторный вход не ошибка и не порождает событие
func (s *RoomService) Join(ctx context.Context, eventID, userID uuid.UUID) error {
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return err
	}

	at := s.now()
	joined, err := s.rooms.JoinRoom(ctx, eventID, userID, at)
	if err != nil {
		return err
	}
	if !joined {
		return nil
	}

	member := dto.Member{
		UserInfo: identityOf(ctx, s.profiles, s.log, userID),
		JoinedAt: at,
		IsOnline: s.isOnline(userID),
	}
	if _, err := s.hub.Publish(ctx, realtime.RoomChannel(eventID), realtime.TypeRoomMemberJoined, member); err != nil {
		s.log.Warn("publish member joined failed", "event_id", eventID, "error", err)
	}
	return nil
}

// ListMembers - множество участников комнаты, без порядка
func (s *RoomService) ListMembers(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	members, err := s.rooms.ListRoomMembers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids, nil
}

// RankedMembers - остальные участники комнаты по убыванию совместимости со зрителем
func (s *RoomService) RankedMembers(ctx context.Context, eventID, viewerID uuid.UUID) ([]dto.Member, error) {
	if err := s.requireMember(ctx, eventID, viewerID); err != nil {
		return nil, err
	}

	memberships, err := s.rooms.ListRoomMembers(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(memberships)+1)
	ids = append(ids, viewerID)
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	var self matching.UserTaste
	if p, ok := profiles[viewerID]; ok {
		self = p.Taste()
	}

	members := make([]dto.Member, 0, len(memberships))
	for _, m := range memberships {
		if m.UserID == viewerID {
			continue
		}
		var (
			taste   matching.UserTaste
			profile *models.Profile
		)
		if p, ok := profiles[m.UserID]; ok {
			profile = &p
			taste = p.Taste()
		}
		members = append(members, dto.Member{
			UserInfo: dto.NewUserInfo(m.UserID, profile),
			Score:    matching.UserCompatibility(self, taste),
			IsOnline: s.isOnline(m.UserID),
			JoinedAt: m.JoinedAt,
		})
	}

	return matching.SortMembersByCompatibility(members, self, func(m dto.Member) matching.UserTaste {
		if p, ok := profiles[m.ID]; ok {
			return p.Taste()
		}
		return matching.UserTaste{}
	}), nil
}

// PostMessage сохраняет сообщение и рассылает его подписчикам комнаты до возврата
func (s *RoomService) PostMessage(ctx context.Context, eventID, authorID uuid.UUID, content string) (dto.RoomMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dto.RoomMessage{}, apperr.ErrEmptyContent
	}
	if err := s.requireMember(ctx, eventID, authorID); err != nil {
		return dto.RoomMessage{}, err
	}

	author := identityOf(ctx, s.profiles, s.log, authorID)

	var out dto.RoomMessage
	_, err := s.hub.Append(ctx, realtime.RoomChannel(eventID), realtime.TypeRoomMessage, func() (interface{}, error) {
		msg := &models.RoomMessage{
			EventID:   eventID,
			AuthorID:  authorID,
			Content:   content,
			CreatedAt: s.now(),
		}
		if err := s.rooms.SaveRoomMessage(ctx, msg); err != nil {
			return nil, err
		}
		out = dto.NewRoomMessage(msg, author)
		return out, nil
	})
	if err != nil {
		return dto.RoomMessage{}, err
	}
	return out, nil
}

// ListMessages - история комнаты по (created_at, id)
func (s *RoomService) ListMessages(ctx context.Context, eventID, userID uuid.UUID) ([]dto.RoomMessage, error) {
	if err := s.requireMember(ctx, eventID, userID); err != nil {
		return nil, err
	}

	messages, err := s.rooms.ListRoomMessages(ctx, eventID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		authorIDs = append(authorIDs, m.AuthorID)
	}
	authors := identitiesOf(ctx, s.profiles, s.log, authorIDs)

	out := make([]dto.RoomMessage, len(messages))
	for i := range messages {
		out[i] = dto.NewRoomMessage(&messages[i], authors[messages[i].AuthorID])
	}
	return out, nil
}

// JoinedRooms - события, в комнаты которых вошел пользователь
func (s *RoomService) JoinedRooms(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	memberships, err := s.rooms.ListJoinedRooms(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(memberships))
	for i, m := range memberships {
		ids[i] = m.EventID
	}
	return ids, nil
}

// IsMember используется при подписке на канал комнаты
func (s *RoomService) IsMember(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return s.rooms.IsRoomMember(ctx, eventID, userID)
}

func (s *RoomService) requireMember(ctx context.Context, eventID, userID uuid.UUID) error {
	ok, err := s.rooms.IsRoomMember(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotRoomMember
	}
	return nil
}

func (s *RoomService) isOnline(userID uuid.UUID) bool {
	return s.presence != nil && s.presence.IsOnline(userID)
}
