package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

// Postgres lê pools, palpites e partidas do banco relacional.
// A escrita dessas entidades pertence aos serviços de CRUD; aqui é só leitura.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do store de leitura
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetPool carrega a pool com criador e participantes
func (p *Postgres) GetPool(ctx context.Context, poolID int64) (*model.Pool, error) {
	const q = `
		SELECT p.id, p.name, p.description, p."isActive", p."isClose", p."startDate", p."endDate",
		       u.id, u.name, u.email
		FROM pool p
		JOIN users u ON u.id = p."creatorId"
		WHERE p.id = $1`

	var (
		pool    model.Pool
		endDate sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, q, poolID).Scan(
		&pool.ID, &pool.Name, &pool.Description, &pool.IsActive, &pool.IsClosed, &pool.StartDate, &endDate,
		&pool.Creator.ID, &pool.Creator.Name, &pool.Creator.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("pool with id %d", poolID)
	}
	if err != nil {
		return nil, model.Upstream(fmt.Sprintf("load pool %d", poolID), err)
	}
	if endDate.Valid {
		pool.EndDate = &endDate.Time
	}

	participants, err := p.participants(ctx, poolID)
	if err != nil {
		return nil, err
	}
	pool.Participants = participants
	return &pool, nil
}

func (p *Postgres) participants(ctx context.Context, poolID int64) ([]model.User, error) {
	const q = `
		SELECT u.id, u.name, u.email
		FROM pool_participants pp
		JOIN users u ON u.id = pp."userId"
		WHERE pp."poolId" = $1
		ORDER BY u.id`

	rows, err := p.db.QueryContext(ctx, q, poolID)
	if err != nil {
		return nil, model.Upstream(fmt.Sprintf("load participants of pool %d", poolID), err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, model.Upstream("scan participant", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Upstream(fmt.Sprintf("load participants of pool %d", poolID), err)
	}
	return out, nil
}

// ListPoolIDs devolve o id de todas as pools
func (p *Postgres) ListPoolIDs(ctx context.Context) ([]int64, error) {
	return p.ids(ctx, "list pools", `SELECT id FROM pool ORDER BY id`)
}

// ListByPool devolve os palpites da pool com usuário e partida (join)
func (p *Postgres) ListByPool(ctx context.Context, poolID int64) ([]model.Prediction, error) {
	const q = `
		SELECT pr.id, pr."poolId", pr.prediction, pr.points,
		       u.id, u.name, u.email,
		       m.id, m.status, m."scoreHome", m."scoreAway"
		FROM prediction pr
		JOIN users u ON u.id = pr."userId"
		JOIN match m ON m.id = pr."matchId"
		WHERE pr."poolId" = $1
		ORDER BY pr.id`

	rows, err := p.db.QueryContext(ctx, q, poolID)
	if err != nil {
		return nil, model.Upstream(fmt.Sprintf("load predictions of pool %d", poolID), err)
	}
	defer rows.Close()

	var out []model.Prediction
	for rows.Next() {
		var (
			pr         model.Prediction
			outcome    string
			status     string
			home, away sql.NullInt64
		)
		if err := rows.Scan(
			&pr.ID, &pr.PoolID, &outcome, &pr.Points,
			&pr.User.ID, &pr.User.Name, &pr.User.Email,
			&pr.Match.ID, &status, &home, &away,
		); err != nil {
			return nil, model.Upstream("scan prediction", err)
		}
		pr.Outcome = model.Outcome(outcome)
		pr.Match.Status = model.MatchStatus(status)
		pr.Match.ScoreHome, pr.Match.ScoreAway = int(home.Int64), int(away.Int64)
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Upstream(fmt.Sprintf("load predictions of pool %d", poolID), err)
	}
	return out, nil
}

// PoolOfPrediction resolve a pool de um palpite.
// Palpite inexistente ou sem pool => ErrNotFound.
func (p *Postgres) PoolOfPrediction(ctx context.Context, predictionID int64) (int64, error) {
	var poolID sql.NullInt64
	err := p.db.QueryRowContext(ctx, `SELECT "poolId" FROM prediction WHERE id = $1`, predictionID).Scan(&poolID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFound("prediction with id %d", predictionID)
	}
	if err != nil {
		return 0, model.Upstream(fmt.Sprintf("load prediction %d", predictionID), err)
	}
	if !poolID.Valid {
		return 0, model.NotFound("pool of prediction %d", predictionID)
	}
	return poolID.Int64, nil
}

// PoolsForMatch devolve as pools distintas com palpites na partida
func (p *Postgres) PoolsForMatch(ctx context.Context, matchID int64) ([]int64, error) {
	const q = `
		SELECT DISTINCT "poolId"
		FROM prediction
		WHERE "matchId" = $1 AND "poolId" IS NOT NULL
		ORDER BY "poolId"`
	return p.ids(ctx, fmt.Sprintf("load pools of match %d", matchID), q, matchID)
}

// GetMatch devolve placar e status de uma partida
func (p *Postgres) GetMatch(ctx context.Context, matchID int64) (*model.MatchResult, error) {
	var (
		m          model.MatchResult
		status     string
		home, away sql.NullInt64
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, status, "scoreHome", "scoreAway" FROM match WHERE id = $1`, matchID,
	).Scan(&m.ID, &status, &home, &away)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("match with id %d", matchID)
	}
	if err != nil {
		return nil, model.Upstream(fmt.Sprintf("load match %d", matchID), err)
	}
	m.Status = model.MatchStatus(status)
	// placar nulo antes do início da partida
	m.ScoreHome, m.ScoreAway = int(home.Int64), int(away.Int64)
	return &m, nil
}

func (p *Postgres) ids(ctx context.Context, op, q string, args ...any) ([]int64, error) {
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, model.Upstream(op, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, model.Upstream(op, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Upstream(op, err)
	}
	return out, nil
}
