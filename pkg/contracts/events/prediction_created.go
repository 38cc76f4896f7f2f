package events

// Evento publicado pelo serviço de palpites quando um palpite é criado.
type PredictionCreated struct {
	PredictionID int64 `json:"prediction_id"`
	PoolID       int64 `json:"pool_id,omitempty"`
	UserID       int64 `json:"user_id,omitempty"`
	MatchID      int64 `json:"match_id,omitempty"`
	TsUnixMs     int64 `json:"ts_unix_ms"`
}
