package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Redis Pub/Sub e repassa as
// atualizações para os clientes do Hub. Para quando o ctx é cancelado.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				hub.Dispatch(msg.Payload)
			}
		}
	}()
}

// Dispatch decodifica um payload do canal e faz o broadcast
func (h *Hub) Dispatch(payload string) {
	var upd events.LeaderboardPush
	if err := json.Unmarshal([]byte(payload), &upd); err != nil {
		h.log.Warn("ws subscriber unmarshal failed", zap.Error(err))
		return
	}
	h.Broadcast(upd)
}
