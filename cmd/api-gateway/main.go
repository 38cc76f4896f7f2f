package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/internal/shared/config"
	"github.com/radieske/pool-leaderboard/internal/shared/logger"
	"github.com/radieske/pool-leaderboard/internal/shared/metrics"
)

func rp(to string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("parse upstream %q: %w", to, err)
	}
	return httputil.NewSingleHostReverseProxy(u), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithFile(cfg.LogFile))
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// target
	leaderboard, err := rp(cfg.LeaderboardURL)
	if err != nil {
		log.Fatal("invalid leaderboard url", zap.Error(err))
	}

	mux := http.NewServeMux()

	// leaderboard REST (ex.: /api/leaderboard/* -> leaderboard-service, mesmo path)
	mux.Handle("/api/leaderboard/", leaderboard)
	mux.Handle("/api/leaderboard", leaderboard)

	// WebSocket de ranking ao vivo (ReverseProxy repassa o upgrade)
	mux.Handle("/ws", leaderboard)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort)
	defer metricsSrv.Close()

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr), zap.String("leaderboard", cfg.LeaderboardURL))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
