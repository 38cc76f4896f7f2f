// Package service orquestra o recálculo dos leaderboards: lê pools, palpites e
// partidas, roda o motor de pontuação e grava o snapshot da pool.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/dto"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/scoring"
)

// Gatilhos do recálculo (label de métrica)
const (
	TriggerManual     = "manual"
	TriggerAll        = "all"
	TriggerPrediction = "prediction"
	TriggerMatch      = "match"
	TriggerQuery      = "query"
)

type PoolReader interface {
	GetPool(ctx context.Context, poolID int64) (*model.Pool, error)
	ListPoolIDs(ctx context.Context) ([]int64, error)
}

type PredictionReader interface {
	ListByPool(ctx context.Context, poolID int64) ([]model.Prediction, error)
	PoolOfPrediction(ctx context.Context, predictionID int64) (int64, error)
	PoolsForMatch(ctx context.Context, matchID int64) ([]int64, error)
}

type MatchReader interface {
	GetMatch(ctx context.Context, matchID int64) (*model.MatchResult, error)
}

type SnapshotRepository interface {
	Upsert(ctx context.Context, poolID int64, entries []model.Entry) (*model.Snapshot, error)
	GetByPool(ctx context.Context, poolID int64) (*model.Snapshot, error)
	GetByID(ctx context.Context, id string) (*model.Snapshot, error)
	List(ctx context.Context) ([]model.Snapshot, error)
	Remove(ctx context.Context, id string) error
}

// Notifier recebe cada snapshot gravado (Kafka, Redis...).
// Erro de notifier é só logado.
type Notifier interface {
	LeaderboardUpdated(ctx context.Context, snap *model.Snapshot) error
}

// Deps agrupa os stores usados pelo serviço
type Deps struct {
	Pools       PoolReader
	Predictions PredictionReader
	Matches     MatchReader
	Snapshots   SnapshotRepository
	Notifiers   []Notifier
}

// Service expõe os gatilhos de recálculo e as consultas de leaderboard.
// Callbacks de métricas são opcionais.
type Service struct {
	log         *zap.Logger
	deps        Deps
	concurrency int

	OnRecomputed func(trigger string, took time.Duration) // métricas
	OnFailed     func(trigger string)                     // métricas
	OnSkipped    func(n int)                              // palpites fora da pool
}

func New(log *zap.Logger, deps Deps, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{log: log, deps: deps, concurrency: concurrency}
}

// RecomputeForPool recalcula e grava o leaderboard de uma pool
func (s *Service) RecomputeForPool(ctx context.Context, poolID int64) (*model.Snapshot, error) {
	_, snap, err := s.recompute(ctx, poolID, TriggerManual)
	return snap, err
}

// RecomputeAll recalcula todas as pools em paralelo (limitado por concurrency).
// Pool removida entre a listagem e o recálculo é ignorada.
func (s *Service) RecomputeAll(ctx context.Context) error {
	ids, err := s.deps.Pools.ListPoolIDs(ctx)
	if err != nil {
		return err
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for _, id := range ids {
		id := id
		p.Go(func(ctx context.Context) error {
			_, _, err := s.recompute(ctx, id, TriggerAll)
			if errors.Is(err, model.ErrNotFound) {
				s.log.Debug("pool vanished during recompute", zap.Int64("pool_id", id))
				return nil
			}
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	s.log.Info("all leaderboards recomputed", zap.Int("pools", len(ids)))
	return nil
}

// GetRanking recalcula a pool e devolve o ranking com os metadados da pool
func (s *Service) GetRanking(ctx context.Context, poolID int64) (*dto.Ranking, error) {
	p, snap, err := s.recompute(ctx, poolID, TriggerQuery)
	if err != nil {
		return nil, err
	}
	return &dto.Ranking{
		Pool: dto.PoolSummary{
			ID:                p.ID,
			Name:              p.Name,
			Description:       p.Description,
			Creator:           dto.Creator{ID: p.Creator.ID, Name: p.Creator.Name},
			TotalParticipants: len(snap.Positions),
		},
		Leaderboard: dto.LeaderboardView{
			LastUpdated: snap.UpdatedAt,
			Positions:   snap.Positions,
		},
	}, nil
}

// OnPredictionCreated recalcula a pool do palpite.
// Palpite ou pool que não resolvem viram no-op.
func (s *Service) OnPredictionCreated(ctx context.Context, predictionID int64) error {
	poolID, err := s.deps.Predictions.PoolOfPrediction(ctx, predictionID)
	if errors.Is(err, model.ErrNotFound) {
		s.log.Info("prediction without pool, skipping", zap.Int64("prediction_id", predictionID))
		return nil
	}
	if err != nil {
		return err
	}

	_, _, err = s.recompute(ctx, poolID, TriggerPrediction)
	if errors.Is(err, model.ErrNotFound) {
		s.log.Info("pool of prediction not found, skipping",
			zap.Int64("prediction_id", predictionID), zap.Int64("pool_id", poolID))
		return nil
	}
	return err
}

// OnMatchResultUpdated recalcula uma vez cada pool com palpites na partida
func (s *Service) OnMatchResultUpdated(ctx context.Context, matchID int64) error {
	if _, err := s.deps.Matches.GetMatch(ctx, matchID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.log.Info("match not found, skipping", zap.Int64("match_id", matchID))
			return nil
		}
		return err
	}

	poolIDs, err := s.deps.Predictions.PoolsForMatch(ctx, matchID)
	if err != nil {
		return err
	}

	// cada pool recalcula uma única vez
	seen := make(map[int64]struct{}, len(poolIDs))
	for _, id := range poolIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, _, err := s.recompute(ctx, id, TriggerMatch); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				continue
			}
			return err
		}
	}
	s.log.Info("match leaderboards recomputed", zap.Int64("match_id", matchID), zap.Int("pools", len(seen)))
	return nil
}

// PoolSnapshot recalcula e relê o documento da pool
func (s *Service) PoolSnapshot(ctx context.Context, poolID int64) (*model.Snapshot, error) {
	if _, _, err := s.recompute(ctx, poolID, TriggerQuery); err != nil {
		return nil, err
	}
	return s.deps.Snapshots.GetByPool(ctx, poolID)
}

// Snapshot resolve o snapshot pelo id e devolve a versão recalculada
func (s *Service) Snapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	cur, err := s.deps.Snapshots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, snap, err := s.recompute(ctx, cur.PoolID, TriggerQuery)
	return snap, err
}

// Snapshots recalcula todas as pools e lista os documentos
func (s *Service) Snapshots(ctx context.Context) ([]model.Snapshot, error) {
	if err := s.RecomputeAll(ctx); err != nil {
		return nil, err
	}
	return s.deps.Snapshots.List(ctx)
}

func (s *Service) RemoveSnapshot(ctx context.Context, id string) error {
	if err := s.deps.Snapshots.Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("leaderboard removed", zap.String("snapshot_id", id))
	return nil
}

func (s *Service) recompute(ctx context.Context, poolID int64, trigger string) (*model.Pool, *model.Snapshot, error) {
	start := time.Now()

	p, snap, err := s.compute(ctx, poolID)
	if err != nil {
		if s.OnFailed != nil {
			s.OnFailed(trigger)
		}
		return nil, nil, err
	}
	if s.OnRecomputed != nil {
		s.OnRecomputed(trigger, time.Since(start))
	}

	s.notify(ctx, snap)
	s.log.Debug("leaderboard recomputed",
		zap.Int64("pool_id", poolID),
		zap.String("trigger", trigger),
		zap.Int("positions", len(snap.Positions)),
	)
	return p, snap, nil
}

func (s *Service) compute(ctx context.Context, poolID int64) (*model.Pool, *model.Snapshot, error) {
	p, err := s.deps.Pools.GetPool(ctx, poolID)
	if err != nil {
		return nil, nil, err
	}
	predictions, err := s.deps.Predictions.ListByPool(ctx, poolID)
	if err != nil {
		return nil, nil, err
	}

	st := scoring.ComputeStandings(p.EligibleUsers(), predictions)
	if st.Skipped > 0 {
		s.log.Debug("predictions from non-members skipped",
			zap.Int64("pool_id", poolID), zap.Int("skipped", st.Skipped))
		if s.OnSkipped != nil {
			s.OnSkipped(st.Skipped)
		}
	}

	snap, err := s.deps.Snapshots.Upsert(ctx, poolID, st.Entries)
	if err != nil {
		return nil, nil, err
	}
	return p, snap, nil
}

func (s *Service) notify(ctx context.Context, snap *model.Snapshot) {
	for _, n := range s.deps.Notifiers {
		if err := n.LeaderboardUpdated(ctx, snap); err != nil {
			s.log.Warn("leaderboard notify failed", zap.Int64("pool_id", snap.PoolID), zap.Error(err))
		}
	}
}
