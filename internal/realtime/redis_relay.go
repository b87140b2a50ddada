package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/thereayou/gigmate/pkg/logger"
)

// RedisRelay рассылает события между экземплярами через redis pub/sub
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	log     *logger.Logger
}

func NewRedisRelay(rdb *redis.Client, channel string, log *logger.Logger) *RedisRelay {
	return &RedisRelay{
		rdb:     rdb,
		channel: channel,
		log:     log.With("component", "redis_relay"),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, raw).Err()
}

// Run подписывается на канал redis и передает чужие события в hub до отмены ctx
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	// дожидаемся подтверждения подписки
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	r.log.Info("relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				r.log.Warn("bad relay payload", "error", err)
				continue
			}
			hub.DeliverRemote(ev)
		}
	}
}
