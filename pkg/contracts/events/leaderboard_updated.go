package events

import "time"

// Posição de um usuário no ranking publicado.
type Position struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	Points      int    `json:"points"`
	Predictions int    `json:"predictions"`
	Position    int    `json:"position"`
}

// Evento emitido após cada recálculo persistido de um leaderboard.
type LeaderboardUpdated struct {
	EventID    string     `json:"event_id"`
	PoolID     int64      `json:"pool_id"`
	SnapshotID string     `json:"snapshot_id"`
	Positions  []Position `json:"positions"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Mensagem do canal Redis e push do WebSocket para os inscritos de uma pool.
type LeaderboardPush struct {
	PoolID  int64              `json:"poolId"`
	Payload LeaderboardUpdated `json:"payload"`
}
