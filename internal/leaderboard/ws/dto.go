package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// PoolID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	PoolID int64  `json:"poolId"` // requerido em subscribe/unsubscribe
}
