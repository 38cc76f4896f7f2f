package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
	"github.com/radieske/pool-leaderboard/pkg/contracts/events"
)

// MessageWriter é a parte do kafka.Writer que o publisher usa
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica leaderboard_updated para o serviço de notificações.
// A chave é o poolId, então eventos da mesma pool mantêm a ordem.
type KafkaPublisher struct {
	Writer MessageWriter
	Topic  string
}

func NewKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

func (p *KafkaPublisher) LeaderboardUpdated(ctx context.Context, snap *model.Snapshot) error {
	b, err := json.Marshal(ToEvent(snap))
	if err != nil {
		return fmt.Errorf("marshal leaderboard_updated: %w", err)
	}
	// tópico vem do writer (kafka-go recusa tópico no writer e na mensagem)
	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(snap.PoolID, 10)),
		Value: b,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.Topic, err)
	}
	return nil
}

// ToEvent converte o snapshot no contrato publicado
func ToEvent(snap *model.Snapshot) events.LeaderboardUpdated {
	positions := make([]events.Position, len(snap.Positions))
	for i, e := range snap.Positions {
		positions[i] = events.Position{
			UserID:      e.UserID,
			Username:    e.Username,
			Points:      e.Points,
			Predictions: e.Predictions,
			Position:    e.Position,
		}
	}
	return events.LeaderboardUpdated{
		EventID:    uuid.NewString(),
		PoolID:     snap.PoolID,
		SnapshotID: snap.ID,
		Positions:  positions,
		UpdatedAt:  snap.UpdatedAt,
	}
}
