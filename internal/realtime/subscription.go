package realtime

import (
	"sync"
	"sync/atomic"
)

// Subscription - постоянная подписка на канал
type Subscription struct {
	id      uint64
	channel Channel
	state   *channelState
	events  chan Event
	once    sync.Once
	lagged  atomic.Bool
	release func()
}

func (s *Subscription) Channel() Channel {
	return s.channel
}

// Events закрывается при Close или когда подписчик не успевает читать
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Lagged - подписка была закрыта из-за переполнения буфера
func (s *Subscription) Lagged() bool {
	return s.lagged.Load()
}

func (s *Subscription) Close() {
	s.state.mu.Lock()
	delete(s.state.subs, s.id)
	closed := s.closeLocked()
	s.state.mu.Unlock()

	if closed {
		s.release()
	}
}

// closeLocked вызывается под state.mu; true, если подписку закрыл этот вызов
func (s *Subscription) closeLocked() bool {
	closed := false
	s.once.Do(func() {
		close(s.events)
		closed = true
	})
	return closed
}
