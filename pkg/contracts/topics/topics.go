package topics

const (
	// Entrada do worker de leaderboard
	PredictionCreated  = "prediction_created"
	MatchResultUpdated = "match_result_updated"

	// Saída (consumida pelo serviço de notificações push)
	LeaderboardUpdated = "leaderboard_updated"

	// DLQ
	LeaderboardEventsDLQ = "leaderboard_events_dlq"
)
