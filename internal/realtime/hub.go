package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/gigmate/pkg/logger"
)

// ChannelKind определяет тип логического канала
type ChannelKind string

const (
	KindRoom   ChannelKind = "room"
	KindThread ChannelKind = "thread"
	KindUser   ChannelKind = "user"
)

func (k ChannelKind) Valid() bool {
	return k == KindRoom || k == KindThread || k == KindUser
}

// Channel - ключ реестра подписок
type Channel struct {
	Kind ChannelKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

func RoomChannel(eventID uuid.UUID) Channel    { return Channel{Kind: KindRoom, ID: eventID} }
func ThreadChannel(threadID uuid.UUID) Channel { return Channel{Kind: KindThread, ID: threadID} }
func UserChannel(userID uuid.UUID) Channel     { return Channel{Kind: KindUser, ID: userID} }

func (c Channel) String() string {
	return string(c.Kind) + ":" + c.ID.String()
}

// EventType определяет типы событий
type EventType string

const (
	TypeRoomMemberJoined EventType = "room.member_joined"
	TypeRoomMessage      EventType = "room.message"

	TypeConnectionRequested EventType = "connection.requested"
	TypeConnectionResolved  EventType = "connection.resolved"

	TypeThreadCreated        EventType = "thread.created"
	TypeThreadMessage        EventType = "thread.message"
	TypeGoingTogether        EventType = "thread.going_together"
	TypeGoingTogetherMutual  EventType = "thread.going_together.mutual"
	TypeChecklistItemAdded   EventType = "thread.checklist.added"
	TypeChecklistItemUpdated EventType = "thread.checklist.updated"
	TypeChecklistItemDeleted EventType = "thread.checklist.deleted"
)

type Event struct {
	Channel   Channel         `json:"channel"`
	Type      EventType       `json:"type"`
	Seq       uint64          `json:"seq"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Origin    string          `json:"origin,omitempty"`
}

// Relay пересылает события другим экземплярам сервиса
type Relay interface {
	Publish(ctx context.Context, ev Event) error
}

// Publisher - то, что нужно сервисам для рассылки
type Publisher interface {
	Publish(ctx context.Context, ch Channel, typ EventType, data interface{}) (Event, error)
	Append(ctx context.Context, ch Channel, typ EventType, write func() (interface{}, error)) (Event, error)
	Serialize(ch Channel, fn func() error) error
}

type channelState struct {
	// writeMu держится на время записи в хранилище и рассылки
	writeMu sync.Mutex

	mu     sync.Mutex
	seq    uint64
	nextID uint64
	subs   map[uint64]*Subscription

	// refs - подписки и операции, держащие состояние; меняется под Hub.mu
	refs int
}

// Hub - реестр каналов, один на процесс
type Hub struct {
	mu       sync.Mutex
	channels map[Channel]*channelState

	buffer int
	origin string
	relay  Relay
	log    *logger.Logger
}

func NewHub(buffer int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		channels: make(map[Channel]*channelState),
		buffer:   buffer,
		origin:   uuid.NewString(),
		log:      log.With("component", "realtime_hub"),
	}
}

// SetRelay подключает межпроцессную пересылку; вызывать до начала работы
func (h *Hub) SetRelay(r Relay) {
	h.relay = r
}

func (h *Hub) Origin() string {
	return h.origin
}

// acquire возвращает состояние канала, создавая его при необходимости.
// Каждый acquire парный с release.
func (h *Hub) acquire(ch Channel) *channelState {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.channels[ch]
	if !ok {
		st = &channelState{subs: make(map[uint64]*Subscription)}
		h.channels[ch] = st
	}
	st.refs++
	return st
}

// release удаляет канал из реестра, когда его никто не держит:
// нет подписчиков и никто не пишет под writeMu
func (h *Hub) release(ch Channel, st *channelState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st.refs--
	if st.refs == 0 && h.channels[ch] == st {
		delete(h.channels, ch)
	}
}

// Subscribe регистрирует слушателя канала. События, опубликованные после
// возврата, гарантированно попадут в подписку (пока она не отстала).
func (h *Hub) Subscribe(ch Channel) *Subscription {
	// ссылку подписки отпускает Subscription.Close или вытеснение при отставании
	st := h.acquire(ch)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.nextID++
	sub := &Subscription{
		id:      st.nextID,
		channel: ch,
		state:   st,
		events:  make(chan Event, h.buffer),
		release: func() { h.release(ch, st) },
	}
	st.subs[sub.id] = sub
	return sub
}

// Publish рассылает событие всем текущим подписчикам канала
func (h *Hub) Publish(ctx context.Context, ch Channel, typ EventType, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		Channel:   ch,
		Type:      typ,
		Data:      raw,
		Timestamp: time.Now().UTC(),
		Origin:    h.origin,
	}
	ev = h.deliver(ev)

	if h.relay != nil {
		if err := h.relay.Publish(ctx, ev); err != nil {
			// локальные подписчики уже получили событие
			h.log.Warn("relay publish failed", "channel", ch.String(), "type", typ, "error", err)
		}
	}
	return ev, nil
}

// Serialize выполняет fn под блокировкой записи канала. Внутри fn можно
// вызывать Publish, но не Append/Serialize того же канала.
func (h *Hub) Serialize(ch Channel, fn func() error) error {
	st := h.acquire(ch)
	defer h.release(ch, st)

	st.writeMu.Lock()
	defer st.writeMu.Unlock()

	return fn()
}

// Append выполняет запись под блокировкой канала и публикует ее результат.
// Так порядок доставки совпадает с порядком записей в хранилище.
func (h *Hub) Append(ctx context.Context, ch Channel, typ EventType, write func() (interface{}, error)) (Event, error) {
	var ev Event
	err := h.Serialize(ch, func() error {
		data, err := write()
		if err != nil {
			return err
		}
		ev, err = h.Publish(ctx, ch, typ, data)
		return err
	})
	return ev, err
}

// DeliverRemote доставляет событие, пришедшее от другого экземпляра
func (h *Hub) DeliverRemote(ev Event) {
	if ev.Origin == h.origin {
		return
	}
	h.deliver(ev)
}

func (h *Hub) deliver(ev Event) Event {
	st := h.acquire(ev.Channel)
	defer h.release(ev.Channel, st)

	var dropped []*Subscription

	st.mu.Lock()
	st.seq++
	ev.Seq = st.seq

	for id, sub := range st.subs {
		select {
		case sub.events <- ev:
		default:
			// отставший подписчик закрывается, клиент переподпишется и получит снимок
			sub.lagged.Store(true)
			delete(st.subs, id)
			if sub.closeLocked() {
				dropped = append(dropped, sub)
			}
			h.log.Warn("subscriber lagged, dropped", "channel", ev.Channel.String())
		}
	}
	st.mu.Unlock()

	for _, sub := range dropped {
		sub.release()
	}
	return ev
}

// SubscriberCount - число подписчиков канала
func (h *Hub) SubscriberCount(ch Channel) int {
	h.mu.Lock()
	st, ok := h.channels[ch]
	h.mu.Unlock()
	if !ok {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.subs)
}

// channelCount - число каналов в реестре
func (h *Hub) channelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}
