package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httpapi "github.com/radieske/pool-leaderboard/internal/leaderboard/http"
	lbmetrics "github.com/radieske/pool-leaderboard/internal/leaderboard/metrics"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/producer"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/pubsub"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/repo"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/service"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/store"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/ws"
	"github.com/radieske/pool-leaderboard/internal/shared/cache"
	"github.com/radieske/pool-leaderboard/internal/shared/config"
	"github.com/radieske/pool-leaderboard/internal/shared/db"
	"github.com/radieske/pool-leaderboard/internal/shared/kafka"
	"github.com/radieske/pool-leaderboard/internal/shared/logger"
	"github.com/radieske/pool-leaderboard/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithFile(cfg.LogFile))
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres: pools, palpites e partidas (somente leitura)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// Mongo: snapshots de leaderboard
	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	log.Info("mongo connected", zap.String("database", cfg.MongoDatabase))

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLeaderboardUpdated)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicLeaderboardUpdated))

	snapshots := repo.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase).Collection(repo.Collection))
	if err := snapshots.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to ensure leaderboard indexes", zap.Error(err))
	}

	st := store.NewPostgres(pg)
	svc := service.New(log, service.Deps{
		Pools:       st,
		Predictions: st,
		Matches:     st,
		Snapshots:   snapshots,
		Notifiers: []service.Notifier{
			producer.NewKafkaPublisher(writer, cfg.TopicLeaderboardUpdated),
			pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		},
	}, cfg.RecomputeConcurrency)

	// métricas Prometheus
	col := lbmetrics.New(prometheus.DefaultRegisterer)
	svc.OnRecomputed = col.Recomputed
	svc.OnFailed = col.Failed
	svc.OnSkipped = col.Skipped

	// WebSocket: broadcasts do Redis chegam em todas as réplicas
	hub := ws.NewHub(log, func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub)

	// sobe servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort,
		db.PingPostgres(pg),
		db.PingMongo(mongoClient),
		cache.PingRedis(redisClient),
	)
	log.Info("metrics/health server starting", zap.String("addr", metricsSrv.Addr))

	api := &httpapi.API{Log: log, Service: svc, WS: hub.HandleWS}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	log.Info("leaderboard-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("leaderboard-service stopped")
}
