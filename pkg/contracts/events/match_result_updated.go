package events

// Evento publicado quando placar ou status de uma partida muda.
type MatchResultUpdated struct {
	MatchID   int64  `json:"match_id"`
	Status    string `json:"status"` // "pending" | "live" | "finished"
	ScoreHome int    `json:"score_home"`
	ScoreAway int    `json:"score_away"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
