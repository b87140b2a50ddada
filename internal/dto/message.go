package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/internal/models"
)

// MessagePayload структура для входящих сообщений
type MessagePayload struct {
	Content string `json:"content"`
}

// RoomMessage структура для исходящих сообщений общего чата
type RoomMessage struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    UserInfo  `json:"author"`
}

type ThreadMessage struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sender    UserInfo  `json:"sender"`
}

type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// NewUserInfo собирает карточку пользователя; без профиля остается только id
func NewUserInfo(id uuid.UUID, profile *models.Profile) UserInfo {
	info := UserInfo{ID: id}
	if profile != nil {
		info.DisplayName = profile.DisplayName
		info.AvatarURL = profile.AvatarURL
	}
	return info
}

func NewRoomMessage(m *models.RoomMessage, author UserInfo) RoomMessage {
	return RoomMessage{
		ID:        m.ID,
		EventID:   m.EventID,
		AuthorID:  m.AuthorID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Author:    author,
	}
}

func NewThreadMessage(m *models.ThreadMessage, sender UserInfo) ThreadMessage {
	return ThreadMessage{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Sender:    sender,
	}
}
