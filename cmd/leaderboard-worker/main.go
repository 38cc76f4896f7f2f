package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/pool-leaderboard/internal/leaderboard/consumer"
	lbmetrics "github.com/radieske/pool-leaderboard/internal/leaderboard/metrics"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/producer"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/pubsub"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/repo"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/service"
	"github.com/radieske/pool-leaderboard/internal/leaderboard/store"
	"github.com/radieske/pool-leaderboard/internal/shared/cache"
	"github.com/radieske/pool-leaderboard/internal/shared/config"
	"github.com/radieske/pool-leaderboard/internal/shared/db"
	"github.com/radieske/pool-leaderboard/internal/shared/kafka"
	"github.com/radieske/pool-leaderboard/internal/shared/logger"
	"github.com/radieske/pool-leaderboard/internal/shared/metrics"
)

const consumerGroup = "leaderboard-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, logger.WithFile(cfg.LogFile))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa dependências: Postgres, Mongo e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("mongo connect", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka: consumer group nos dois tópicos de entrada + writers de saída
	reader := kafka.NewGroupReader(cfg.KafkaBrokers, consumerGroup, cfg.TopicPredictionCreated, cfg.TopicMatchResultUpdated)
	defer reader.Close()

	updatedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLeaderboardUpdated)
	defer updatedWriter.Close()

	var dlq consumer.Writer
	if cfg.TopicEventsDLQ != "" {
		dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventsDLQ)
		defer dlqWriter.Close()
		dlq = dlqWriter
	}

	snapshots := repo.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase).Collection(repo.Collection))
	if err := snapshots.EnsureIndexes(ctx); err != nil {
		log.Fatal("ensure leaderboard indexes", zap.Error(err))
	}

	st := store.NewPostgres(pg)
	svc := service.New(log, service.Deps{
		Pools:       st,
		Predictions: st,
		Matches:     st,
		Snapshots:   snapshots,
		Notifiers: []service.Notifier{
			producer.NewKafkaPublisher(updatedWriter, cfg.TopicLeaderboardUpdated),
			pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		},
	}, cfg.RecomputeConcurrency)

	// Métricas Prometheus para monitoramento do processamento
	col := lbmetrics.New(prometheus.DefaultRegisterer)
	svc.OnRecomputed = col.Recomputed
	svc.OnFailed = col.Failed
	svc.OnSkipped = col.Skipped

	proc := &consumer.Processor{
		Log:                     log,
		Reader:                  reader,
		DLQ:                     dlq,
		Service:                 svc,
		TopicPredictionCreated:  cfg.TopicPredictionCreated,
		TopicMatchResultUpdated: cfg.TopicMatchResultUpdated,
		Attempts:                cfg.EventRetryAttempts,
		RetryDelay:              200 * time.Millisecond,
		HandleTimeout:           30 * time.Second,
		OnConsumed:              col.Consumed,
		OnResult:                col.Event,
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort,
		db.PingPostgres(pg),
		db.PingMongo(mongoClient),
		cache.PingRedis(redisClient),
	)
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// refresh periódico (gatilho agendado)
	if cfg.RefreshInterval > 0 {
		go svc.RunRefresher(ctx, cfg.RefreshInterval)
	}

	log.Info("leaderboard-worker started",
		zap.Strings("consume", []string{cfg.TopicPredictionCreated, cfg.TopicMatchResultUpdated}),
		zap.String("publish", cfg.TopicLeaderboardUpdated),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("leaderboard-worker stopped")
}
