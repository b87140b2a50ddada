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

// ThreadService - приватный тред пары: сообщения, чек-лист и "идем вместе"
type ThreadService struct {
	threads  ThreadStore
	profiles ProfileDirectory
	hub      realtime.Publisher
	log      *logger.Logger
	now      Clock
}

func NewThreadService(threads ThreadStore, profiles ProfileDirectory, hub realtime.Publisher, log *logger.Logger) *ThreadService {
	return &ThreadService{
		threads:  threads,
		profiles: profiles,
		hub:      hub,
		log:      log.With("component", "thread_service"),
		now:      systemClock,
	}
}

// ItemPatch - частичное изменение пункта чек-листа
type ItemPatch struct {
	Title *string
	// AssignedTo применяется, только если SetAssignee; nil снимает исполнителя
	AssignedTo  *uuid.UUID
	SetAssignee bool
}

func (s *ThreadService) GetByID(ctx context.Context, threadID uuid.UUID) (*models.Thread, error) {
	return s.threads.GetThread(ctx, threadID)
}

func (s *ThreadService) GetByConnectionID(ctx context.Context, connectionID uuid.UUID) (*models.Thread, error) {
	return s.threads.GetThreadByConnection(ctx, connectionID)
}

func (s *ThreadService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.Thread, error) {
	threads, err := s.threads.ListUserThreads(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Thread, len(threads))
	for i := range threads {
		out[i] = dto.NewThread(&threads[i])
	}
	return out, nil
}

// GetForParticipant возвращает тред, только если userID один из двух участников
func (s *ThreadService) GetForParticipant(ctx context.Context, threadID, userID uuid.UUID) (*models.Thread, error) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(userID) {
		return nil, apperr.ErrNotParticipant
	}
	return thread, nil
}

func (s *ThreadService) PostMessage(ctx context.Context, threadID, senderID uuid.UUID, content string) (dto.ThreadMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dto.ThreadMessage{}, apperr.ErrEmptyContent
	}
	if _, err := s.GetForParticipant(ctx, threadID, senderID); err != nil {
		return dto.ThreadMessage{}, err
	}

	sender := identityOf(ctx, s.profiles, s.log, senderID)

	var out dto.ThreadMessage
	_, err := s.hub.Append(ctx, realtime.ThreadChannel(threadID), realtime.TypeThreadMessage, func() (interface{}, error) {
		msg := &models.ThreadMessage{
			ThreadID:  threadID,
			SenderID:  senderID,
			Content:   content,
			CreatedAt: s.now(),
		}
		if err := s.threads.SaveThreadMessage(ctx, msg); err != nil {
			return nil, err
		}
		out = dto.NewThreadMessage(msg, sender)
		return out, nil
	})
	if err != nil {
		return dto.ThreadMessage{}, err
	}
	return out, nil
}

func (s *ThreadService) ListMessages(ctx context.Context, threadID, userID uuid.UUID) ([]dto.ThreadMessage, error) {
	thread, err := s.GetForParticipant(ctx, threadID, userID)
	if err != nil {
		return nil, err
	}
	return s.listMessages(ctx, thread)
}

func (s *ThreadService) listMessages(ctx context.Context, thread *models.Thread) ([]dto.ThreadMessage, error) {
	messages, err := s.threads.ListThreadMessages(ctx, thread.ID)
	if err != nil {
		return nil, err
	}
	senders := identitiesOf(ctx, s.profiles, s.log, thread.ParticipantIDs())

	out := make([]dto.ThreadMessage, len(messages))
	for i := range messages {
		sender, ok := senders[messages[i].SenderID]
		if !ok {
			sender = dto.UserInfo{ID: messages[i].SenderID}
		}
		out[i] = dto.NewThreadMessage(&messages[i], sender)
	}
	return out, nil
}

// SetGoingTogether идемпотентно ставит флаг пользователя. Событие mutual
// публикуется ровно один раз: вызовом, который сделал оба флага true.
func (s *ThreadService) SetGoingTogether(ctx context.Context, threadID, userID uuid.UUID, value bool) (dto.GoingTogether, error) {
	ch := realtime.ThreadChannel(threadID)

	var out dto.GoingTogether
	err := s.hub.Serialize(ch, func() error {
		at := s.now()
		change, err := s.threads.SetGoingTogether(ctx, threadID, userID, value, at)
		if err != nil {
			return err
		}

		out = dto.GoingTogether{Thread: dto.NewThread(change.Thread), Mutual: change.Mutual}
		if !change.Changed {
			return nil
		}

		if _, err := s.hub.Publish(ctx, ch, realtime.TypeGoingTogether, out.Thread); err != nil {
			s.log.Warn("publish going together failed", "thread_id", threadID, "error", err)
		}
		if change.Mutual {
			s.log.Info("going together confirmed by both", "thread_id", threadID)
			mutual := dto.Mutual{
				ThreadID:     threadID,
				ConnectionID: change.Thread.ConnectionID,
				EventID:      change.Thread.EventID,
				ConfirmedBy:  userID,
				At:           at,
			}
			if _, err := s.hub.Publish(ctx, ch, realtime.TypeGoingTogetherMutual, mutual); err != nil {
				s.log.Warn("publish mutual failed", "thread_id", threadID, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return dto.GoingTogether{}, err
	}
	return out, nil
}

func (s *ThreadService) AddItem(ctx context.Context, threadID, userID uuid.UUID, title string, assignee *uuid.UUID) (dto.ChecklistItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dto.ChecklistItem{}, apperr.ErrEmptyContent
	}
	thread, err := s.GetForParticipant(ctx, threadID, userID)
	if err != nil {
		return dto.ChecklistItem{}, err
	}
	if assignee != nil && !thread.HasParticipant(*assignee) {
		return dto.ChecklistItem{}, apperr.ErrInvalidAssignee
	}

	var out dto.ChecklistItem
	_, err = s.hub.Append(ctx, realtime.ThreadChannel(threadID), realtime.TypeChecklistItemAdded, func() (interface{}, error) {
		at := s.now()
		item := &models.ChecklistItem{
			ThreadID:   threadID,
			Title:      title,
			AssignedTo: assignee,
			CreatedBy:  userID,
			CreatedAt:  at,
			UpdatedAt:  at,
		}
		if err := s.threads.CreateChecklistItem(ctx, item); err != nil {
			return nil, err
		}
		out = dto.NewChecklistItem(item)
		return out, nil
	})
	if err != nil {
		return dto.ChecklistItem{}, err
	}
	return out, nil
}

// ToggleItem доступен обоим участникам, владельца у пункта нет
func (s *ThreadService) ToggleItem(ctx context.Context, threadID, itemID, userID uuid.UUID) (dto.ChecklistItem, error) {
	if _, err := s.GetForParticipant(ctx, threadID, userID); err != nil {
		return dto.ChecklistItem{}, err
	}
	return s.updateItem(ctx, threadID, func() (*models.ChecklistItem, error) {
		return s.threads.ToggleChecklistItem(ctx, threadID, itemID)
	})
}

func (s *ThreadService) UpdateItem(ctx context.Context, threadID, itemID, userID uuid.UUID, patch ItemPatch) (dto.ChecklistItem, error) {
	thread, err := s.GetForParticipant(ctx, threadID, userID)
	if err != nil {
		return dto.ChecklistItem{}, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return dto.ChecklistItem{}, apperr.ErrEmptyContent
		}
		fields["title"] = title
	}
	if patch.SetAssignee {
		if patch.AssignedTo != nil && !thread.HasParticipant(*patch.AssignedTo) {
			return dto.ChecklistItem{}, apperr.ErrInvalidAssignee
		}
		if patch.AssignedTo != nil {
			fields["assigned_to"] = *patch.AssignedTo
		} else {
			fields["assigned_to"] = nil
		}
	}

	if len(fields) == 0 {
		item, err := s.threads.GetChecklistItem(ctx, threadID, itemID)
		if err != nil {
			return dto.ChecklistItem{}, err
		}
		return dto.NewChecklistItem(item), nil
	}

	fields["updated_at"] = s.now()
	return s.updateItem(ctx, threadID, func() (*models.ChecklistItem, error) {
		return s.threads.UpdateChecklistItem(ctx, threadID, itemID, fields)
	})
}

func (s *ThreadService) updateItem(ctx context.Context, threadID uuid.UUID, write func() (*models.ChecklistItem, error)) (dto.ChecklistItem, error) {
	var out dto.ChecklistItem
	_, err := s.hub.Append(ctx, realtime.ThreadChannel(threadID), realtime.TypeChecklistItemUpdated, func() (interface{}, error) {
		item, err := write()
		if err != nil {
			return nil, err
		}
		out = dto.NewChecklistItem(item)
		return out, nil
	})
	if err != nil {
		return dto.ChecklistItem{}, err
	}
	return out, nil
}

func (s *ThreadService) DeleteItem(ctx context.Context, threadID, itemID, userID uuid.UUID) error {
	if _, err := s.GetForParticipant(ctx, threadID, userID); err != nil {
		return err
	}
	_, err := s.hub.Append(ctx, realtime.ThreadChannel(threadID), realtime.TypeChecklistItemDeleted, func() (interface{}, error) {
		if err := s.threads.DeleteChecklistItem(ctx, threadID, itemID); err != nil {
			return nil, err
		}
		return dto.ChecklistItemDeleted{ID: itemID, ThreadID: threadID}, nil
	})
	return err
}

func (s *ThreadService) ListItems(ctx context.Context, threadID, userID uuid.UUID) ([]dto.ChecklistItem, error) {
	if _, err := s.GetForParticipant(ctx, threadID, userID); err != nil {
		return nil, err
	}
	items, err := s.threads.ListChecklistItems(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return dto.NewChecklist(items), nil
}

// Snapshot - полное состояние треда для (пере)подписки
func (s *ThreadService) Snapshot(ctx context.Context, threadID, userID uuid.UUID) (dto.ThreadSnapshot, error) {
	thread, err := s.GetForParticipant(ctx, threadID, userID)
	if err != nil {
		return dto.ThreadSnapshot{}, err
	}
	messages, err := s.listMessages(ctx, thread)
	if err != nil {
		return dto.ThreadSnapshot{}, err
	}
	items, err := s.threads.ListChecklistItems(ctx, threadID)
	if err != nil {
		return dto.ThreadSnapshot{}, err
	}
	return dto.ThreadSnapshot{
		Thread:    dto.NewThread(thread),
		Messages:  messages,
		Checklist: dto.NewChecklist(items),
	}, nil
}
