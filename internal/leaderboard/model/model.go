package model

import "time"

// Outcome é o resultado declarado num palpite (1x2)
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeDraw Outcome = "draw"
	OutcomeAway Outcome = "away"
)

// Valid indica se o valor é um dos três resultados aceitos
func (o Outcome) Valid() bool {
	return o == OutcomeHome || o == OutcomeDraw || o == OutcomeAway
}

// MatchStatus segue o ciclo pending -> live -> finished
type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchLive     MatchStatus = "live"
	MatchFinished MatchStatus = "finished"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Pool é um bolão: criador + participantes disputando palpites
type Pool struct {
	ID           int64
	Name         string
	Description  string
	Creator      User
	Participants []User
	IsActive     bool
	IsClosed     bool
	StartDate    time.Time
	EndDate      *time.Time
}

// EligibleUsers devolve criador ∪ participantes, sem repetição.
// O criador entra mesmo quando não está na tabela de participantes.
func (p *Pool) EligibleUsers() []User {
	seen := make(map[int64]struct{}, len(p.Participants)+1)
	out := make([]User, 0, len(p.Participants)+1)
	if p.Creator.ID != 0 {
		seen[p.Creator.ID] = struct{}{}
		out = append(out, p.Creator)
	}
	for _, u := range p.Participants {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}

// MatchResult é a visão da partida usada na pontuação
type MatchResult struct {
	ID        int64       `json:"id"`
	Status    MatchStatus `json:"status"`
	ScoreHome int         `json:"scoreHome"`
	ScoreAway int         `json:"scoreAway"`
}

// Prediction já vem com usuário e partida carregados (join)
type Prediction struct {
	ID      int64
	PoolID  int64
	Outcome Outcome
	Points  int // valor armazenado; o recálculo não escreve aqui
	User    User
	Match   MatchResult
}

// Entry é uma linha do ranking
type Entry struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Points      int    `json:"points"`
	Predictions int    `json:"predictions"`
	Position    int    `json:"position"`
}

// Snapshot é o documento persistido do leaderboard de uma pool
type Snapshot struct {
	ID        string    `json:"id"`
	PoolID    int64     `json:"poolId"`
	Positions []Entry   `json:"positions"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}
