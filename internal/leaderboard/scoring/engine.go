// Package scoring calcula o ranking de uma pool a partir dos palpites.
// Funções puras: nada aqui acessa banco ou rede.
package scoring

import (
	"sort"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

const (
	ExactPoints = 3 // acertou o resultado (1x2)
	SidePoints  = 1 // acertou o lado vencedor
)

// Standings é o resultado de um cálculo
type Standings struct {
	Entries []model.Entry
	// Skipped conta palpites de usuários fora da pool (ex.: participante removido)
	Skipped int
}

// ActualOutcome deriva o resultado 1x2 a partir do placar
func ActualOutcome(scoreHome, scoreAway int) model.Outcome {
	switch {
	case scoreHome > scoreAway:
		return model.OutcomeHome
	case scoreHome < scoreAway:
		return model.OutcomeAway
	default:
		return model.OutcomeDraw
	}
}

// Award devolve os pontos de um palpite. Partidas não encerradas valem 0.
//
// O ramo de 1 ponto só é avaliado quando o acerto exato falha; para os três
// valores válidos de Outcome ele nunca é satisfeito nesse caso. Não inverter
// a ordem dos ramos.
func Award(predicted model.Outcome, m model.MatchResult) int {
	if m.Status != model.MatchFinished {
		return 0
	}
	h, a := m.ScoreHome, m.ScoreAway
	if predicted == ActualOutcome(h, a) {
		return ExactPoints
	} else if (predicted == model.OutcomeHome && h > a) ||
		(predicted == model.OutcomeAway && h < a) ||
		(predicted == model.OutcomeDraw && h == a) {
		return SidePoints
	}
	return 0
}

type accumulator struct {
	user        model.User
	points      int
	predictions int
}

// ComputeStandings agrega os palpites dos usuários elegíveis e ordena por
// pontos desc, depois por quantidade de palpites desc. Empates restantes
// ficam por id de usuário asc, o que deixa o resultado determinístico.
// Posições são 1..N sem repetição.
func ComputeStandings(eligible []model.User, predictions []model.Prediction) Standings {
	byUser := make(map[int64]*accumulator, len(eligible))
	accs := make([]*accumulator, 0, len(eligible))
	for _, u := range eligible {
		if _, ok := byUser[u.ID]; ok {
			continue
		}
		acc := &accumulator{user: u}
		byUser[u.ID] = acc
		accs = append(accs, acc)
	}

	var skipped int
	for _, p := range predictions {
		acc, ok := byUser[p.User.ID]
		if !ok {
			skipped++
			continue
		}
		acc.predictions++
		acc.points += Award(p.Outcome, p.Match)
	}

	sort.SliceStable(accs, func(i, j int) bool {
		a, b := accs[i], accs[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if a.predictions != b.predictions {
			return a.predictions > b.predictions
		}
		return a.user.ID < b.user.ID
	})

	entries := make([]model.Entry, len(accs))
	for i, acc := range accs {
		entries[i] = model.Entry{
			UserID:      acc.user.ID,
			Username:    acc.user.Name,
			Email:       acc.user.Email,
			Points:      acc.points,
			Predictions: acc.predictions,
			Position:    i + 1,
		}
	}
	return Standings{Entries: entries, Skipped: skipped}
}
