package dto

import (
	"time"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

// Creator é a versão resumida do criador da pool
type Creator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PoolSummary struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Creator           Creator `json:"creator"`
	TotalParticipants int     `json:"totalParticipants"` // tamanho do ranking
}

type LeaderboardView struct {
	LastUpdated time.Time     `json:"lastUpdated"`
	Positions   []model.Entry `json:"positions"`
}

// Ranking é a resposta de /pool/{poolId}/ranking
type Ranking struct {
	Pool        PoolSummary     `json:"pool"`
	Leaderboard LeaderboardView `json:"leaderboard"`
}
