package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/pkg/contracts/events"
)

// client embrulha a conexão; gorilla só aceita um writer por vez
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por pool
// subs: mapeia poolID para o conjunto de clientes inscritos
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[int64]map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[int64]map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode se inscrever em várias pools.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	defer conn.Close()
	h.log.Debug("ws connected", zap.String("conn_id", c.id))

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.PoolID]; !ok {
				h.subs[msg.PoolID] = make(map[*client]struct{})
			}
			h.subs[msg.PoolID][c] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.unsubscribe(msg.PoolID, c)
		case "ping":
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}

	// remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for poolID, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, poolID)
		}
	}
	h.mu.Unlock()
	h.log.Debug("ws disconnected", zap.String("conn_id", c.id))
}

func (h *Hub) unsubscribe(poolID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[poolID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, poolID)
		}
	}
}

// Subscribers devolve quantos clientes estão inscritos na pool
func (h *Hub) Subscribers(poolID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[poolID])
}

// Broadcast envia a atualização para todos os inscritos na pool
func (h *Hub) Broadcast(update events.LeaderboardPush) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[update.PoolID]))
	for c := range h.subs[update.PoolID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(update)
	if err != nil {
		h.log.Warn("ws marshal failed", zap.Error(err))
		return
	}
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("conn_id", c.id), zap.Error(err))
		}
	}
}
