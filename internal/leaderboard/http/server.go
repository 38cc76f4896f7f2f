package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/dto"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/model"
)

// Leaderboards é o que a API precisa do serviço de leaderboard
type Leaderboards interface {
	RecomputeAll(ctx context.Context) error
	RecomputeForPool(ctx context.Context, poolID int64) (*model.Snapshot, error)
	GetRanking(ctx context.Context, poolID int64) (*dto.Ranking, error)
	OnPredictionCreated(ctx context.Context, predictionID int64) error
	OnMatchResultUpdated(ctx context.Context, matchID int64) error
	PoolSnapshot(ctx context.Context, poolID int64) (*model.Snapshot, error)
	Snapshot(ctx context.Context, id string) (*model.Snapshot, error)
	Snapshots(ctx context.Context) ([]model.Snapshot, error)
	RemoveSnapshot(ctx context.Context, id string) error
}

// API expõe os endpoints REST do leaderboard em /api/leaderboard
type API struct {
	Log     *zap.Logger
	Service Leaderboards
	WS      http.HandlerFunc // opcional, montado em /ws
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Post("/update-all", a.updateAll)
		r.Get("/", a.list)
		r.Get("/pool/{poolId}", a.poolSnapshot)
		r.Get("/pool/{poolId}/calculate", a.calculate)
		r.Get("/pool/{poolId}/ranking", a.ranking)
		r.Post("/update/prediction/{predictionId}", a.updateByPrediction)
		r.Post("/update/match/{matchId}", a.updateByMatch)
		r.Get("/{id}", a.get)
		r.Delete("/{id}", a.remove)
	})
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz os erros do domínio para status HTTP
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrUpstreamUnavailable):
		a.Log.Warn("upstream unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "upstream unavailable"})
	default:
		a.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

// idParam lê um id numérico da rota; responde 400 se inválido
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func (a *API) updateAll(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.RecomputeAll(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "All leaderboards updated successfully."})
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	snaps, err := a.Service.Snapshots(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Service.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) remove(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.RemoveSnapshot(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) poolSnapshot(w http.ResponseWriter, r *http.Request) {
	poolID, ok := idParam(w, r, "poolId")
	if !ok {
		return
	}
	snap, err := a.Service.PoolSnapshot(r.Context(), poolID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) calculate(w http.ResponseWriter, r *http.Request) {
	poolID, ok := idParam(w, r, "poolId")
	if !ok {
		return
	}
	snap, err := a.Service.RecomputeForPool(r.Context(), poolID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) ranking(w http.ResponseWriter, r *http.Request) {
	poolID, ok := idParam(w, r, "poolId")
	if !ok {
		return
	}
	rk, err := a.Service.GetRanking(r.Context(), poolID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rk)
}

func (a *API) updateByPrediction(w http.ResponseWriter, r *http.Request) {
	predictionID, ok := idParam(w, r, "predictionId")
	if !ok {
		return
	}
	if err := a.Service.OnPredictionCreated(r.Context(), predictionID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Leaderboard updated successfully."})
}

func (a *API) updateByMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := idParam(w, r, "matchId")
	if !ok {
		return
	}
	if err := a.Service.OnMatchResultUpdated(r.Context(), matchID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Leaderboards updated successfully."})
}
