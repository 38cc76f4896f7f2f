package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/producer"
	"github.com/radieske/pool-leaderboard/pkg/contracts/events"
)

// ChannelLeaderboardBroadcast é o canal default (REDIS_PUBSUB_CHANNEL)
const ChannelLeaderboardBroadcast = "leaderboard_updates_broadcast"

// Publisher é o subconjunto do cliente Redis usado aqui
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type RedisBroadcaster struct {
	r       Publisher
	channel string
}

func NewRedisBroadcaster(r Publisher, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelLeaderboardBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

// LeaderboardUpdated publica o snapshot no canal para os hubs WebSocket
func (b *RedisBroadcaster) LeaderboardUpdated(ctx context.Context, snap *model.Snapshot) error {
	msg, err := json.Marshal(events.LeaderboardPush{PoolID: snap.PoolID, Payload: producer.ToEvent(snap)})
	if err != nil {
		return fmt.Errorf("marshal ws update: %w", err)
	}
	if err := b.r.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}
