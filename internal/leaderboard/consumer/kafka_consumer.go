package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
	"github.com/radieske/pool-leaderboard/pkg/contracts/events"
)

// Resultados por mensagem (label de métrica)
const (
	ResultOK        = "ok"
	ResultInvalid   = "invalid"
	ResultDLQ       = "dlq"
	ResultIgnored   = "ignored"
	ResultDLQFailed = "dlq_failed" // a DLQ recusou; offset não confirmado
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Leaderboards são os gatilhos de recálculo disparados pelos eventos
type Leaderboards interface {
	OnPredictionCreated(ctx context.Context, predictionID int64) error
	OnMatchResultUpdated(ctx context.Context, matchID int64) error
}

// Processor consome prediction_created e match_result_updated e recalcula
// os leaderboards afetados. Falhas de upstream são repetidas; o que sobra
// vai para a DLQ e o offset é confirmado. Se nem a DLQ aceitar a mensagem,
// Run para sem confirmar o offset e ela é reentregue no próximo start.
type Processor struct {
	Log     *zap.Logger
	Reader  Reader
	DLQ     Writer // opcional
	Service Leaderboards

	TopicPredictionCreated  string
	TopicMatchResultUpdated string

	Attempts      uint          // tentativas por mensagem (>=1)
	RetryDelay    time.Duration // delay base do backoff
	HandleTimeout time.Duration // 0 = sem timeout por mensagem

	OnConsumed func(topic string)         // métricas (counter++)
	OnResult   func(topic, result string) // métricas por resultado
}

// Run inicia o loop principal de consumo. Retorna quando o ctx é cancelado.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed(m.Topic)
		}

		result := p.Handle(ctx, m)
		if p.OnResult != nil {
			p.OnResult(m.Topic, result)
		}
		if result == ResultDLQFailed {
			return fmt.Errorf("%w: %s offset %d", ErrDeadLetter, m.Topic, m.Offset)
		}

		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// Handle processa uma mensagem e devolve o resultado para métricas
func (p *Processor) Handle(ctx context.Context, m kafka.Message) string {
	var op func(context.Context) error

	switch m.Topic {
	case p.TopicPredictionCreated:
		var ev events.PredictionCreated
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.PredictionID <= 0 {
			return p.deadLetter(ctx, m, invalid(err))
		}
		op = func(ctx context.Context) error { return p.Service.OnPredictionCreated(ctx, ev.PredictionID) }

	case p.TopicMatchResultUpdated:
		var ev events.MatchResultUpdated
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MatchID <= 0 {
			return p.deadLetter(ctx, m, invalid(err))
		}
		op = func(ctx context.Context) error { return p.Service.OnMatchResultUpdated(ctx, ev.MatchID) }

	default:
		p.Log.Warn("unexpected topic", zap.String("topic", m.Topic))
		return ResultIgnored
	}

	if err := p.withRetry(ctx, op); err != nil {
		p.Log.Error("event handling failed",
			zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return p.deadLetter(ctx, m, err)
	}
	return ResultOK
}

func (p *Processor) withRetry(ctx context.Context, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error {
			if p.HandleTimeout <= 0 {
				return op(ctx)
			}
			opCtx, cancel := context.WithTimeout(ctx, p.HandleTimeout)
			defer cancel()
			return op(opCtx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.RetryDelay),
		retry.LastErrorOnly(true),
		// só falha de store vale repetir
		retry.RetryIf(func(err error) bool { return errors.Is(err, model.ErrUpstreamUnavailable) }),
		retry.OnRetry(func(n uint, err error) {
			p.Log.Warn("retrying event", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) string {
	result := ResultDLQ
	if errors.Is(cause, errInvalid) {
		result = ResultInvalid
	}
	if p.DLQ == nil {
		return result
	}

	err := p.DLQ.WriteMessages(ctx, kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: "x-source-topic", Value: []byte(m.Topic)},
			{Key: "x-error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		p.Log.Error("dlq write failed", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return ResultDLQFailed
	}
	return result
}

// ErrDeadLetter indica que uma mensagem falhou e a DLQ também recusou
var ErrDeadLetter = errors.New("dead letter write failed")

var errInvalid = errors.New("invalid event")

func invalid(err error) error {
	if err == nil {
		return errInvalid
	}
	return fmt.Errorf("%w: %w", errInvalid, err)
}
