package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

// FakePools é um stub programável de PoolReader
type FakePools struct {
	GetPoolFunc     func(ctx context.Context, poolID int64) (*model.Pool, error)
	ListPoolIDsFunc func(ctx context.Context) ([]int64, error)
}

func (f *FakePools) GetPool(ctx context.Context, poolID int64) (*model.Pool, error) {
	if f.GetPoolFunc != nil {
		return f.GetPoolFunc(ctx, poolID)
	}
	return nil, model.NotFound("pool with id %d", poolID)
}

func (f *FakePools) ListPoolIDs(ctx context.Context) ([]int64, error) {
	if f.ListPoolIDsFunc != nil {
		return f.ListPoolIDsFunc(ctx)
	}
	return nil, nil
}

// FakePredictions é um stub programável de PredictionReader
type FakePredictions struct {
	ListByPoolFunc       func(ctx context.Context, poolID int64) ([]model.Prediction, error)
	PoolOfPredictionFunc func(ctx context.Context, predictionID int64) (int64, error)
	PoolsForMatchFunc    func(ctx context.Context, matchID int64) ([]int64, error)
}

func (f *FakePredictions) ListByPool(ctx context.Context, poolID int64) ([]model.Prediction, error) {
	if f.ListByPoolFunc != nil {
		return f.ListByPoolFunc(ctx, poolID)
	}
	return nil, nil
}

func (f *FakePredictions) PoolOfPrediction(ctx context.Context, predictionID int64) (int64, error) {
	if f.PoolOfPredictionFunc != nil {
		return f.PoolOfPredictionFunc(ctx, predictionID)
	}
	return 0, model.NotFound("prediction with id %d", predictionID)
}

func (f *FakePredictions) PoolsForMatch(ctx context.Context, matchID int64) ([]int64, error) {
	if f.PoolsForMatchFunc != nil {
		return f.PoolsForMatchFunc(ctx, matchID)
	}
	return nil, nil
}

// FakeMatches é um stub programável de MatchReader
type FakeMatches struct {
	GetMatchFunc func(ctx context.Context, matchID int64) (*model.MatchResult, error)
}

func (f *FakeMatches) GetMatch(ctx context.Context, matchID int64) (*model.MatchResult, error) {
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, matchID)
	}
	return nil, model.NotFound("match with id %d", matchID)
}

// memSnapshots guarda um documento por pool, como o índice único do Mongo
type memSnapshots struct {
	mu      sync.Mutex
	byPool  map[int64]*model.Snapshot
	upserts map[int64]int
	clock   time.Time

	UpsertErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{
		byPool:  map[int64]*model.Snapshot{},
		upserts: map[int64]int{},
		clock:   time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC),
	}
}

func (m *memSnapshots) Upsert(_ context.Context, poolID int64, entries []model.Entry) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}

	m.clock = m.clock.Add(time.Minute)
	m.upserts[poolID]++

	cur, ok := m.byPool[poolID]
	if !ok {
		cur = &model.Snapshot{ID: fmt.Sprintf("snap-%d", poolID), PoolID: poolID, CreatedAt: m.clock}
		m.byPool[poolID] = cur
	}
	cur.Positions = append([]model.Entry(nil), entries...)
	cur.UpdatedAt = m.clock

	out := *cur
	return &out, nil
}

func (m *memSnapshots) GetByPool(_ context.Context, poolID int64) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byPool[poolID]
	if !ok {
		return nil, model.NotFound("leaderboard for pool %d", poolID)
	}
	out := *cur
	return &out, nil
}

func (m *memSnapshots) GetByID(_ context.Context, id string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byPool {
		if s.ID == id {
			out := *s
			return &out, nil
		}
	}
	return nil, model.NotFound("leaderboard %s", id)
}

func (m *memSnapshots) List(_ context.Context) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Snapshot
	for _, s := range m.byPool {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PoolID < out[j].PoolID })
	return out, nil
}

func (m *memSnapshots) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for poolID, s := range m.byPool {
		if s.ID == id {
			delete(m.byPool, poolID)
			return nil
		}
	}
	return model.NotFound("leaderboard %s", id)
}

func (m *memSnapshots) upsertCount(poolID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts[poolID]
}

// FakeNotifier registra as notificações recebidas
type FakeNotifier struct {
	mu    sync.Mutex
	pools []int64

	LeaderboardUpdatedFunc func(ctx context.Context, snap *model.Snapshot) error
}

func (f *FakeNotifier) LeaderboardUpdated(ctx context.Context, snap *model.Snapshot) error {
	f.mu.Lock()
	f.pools = append(f.pools, snap.PoolID)
	f.mu.Unlock()
	if f.LeaderboardUpdatedFunc != nil {
		return f.LeaderboardUpdatedFunc(ctx, snap)
	}
	return nil
}

func (f *FakeNotifier) Pools() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.pools...)
}
