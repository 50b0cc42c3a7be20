package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	kafkabroker "github.com/PookieLand/employee-management-service/internal/adapters/broker/kafka"
	rediscache "github.com/PookieLand/employee-management-service/internal/adapters/cache/redis"
	"github.com/PookieLand/employee-management-service/internal/adapters/repository/postgres"
	"github.com/PookieLand/employee-management-service/internal/core/employee"
	"github.com/PookieLand/employee-management-service/internal/core/event"
	"github.com/PookieLand/employee-management-service/internal/core/onboarding"
	"github.com/PookieLand/employee-management-service/internal/platform/config"
	pg "github.com/PookieLand/employee-management-service/internal/platform/db/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	// キャッシュはベストエフォート。到達できなくても起動は続ける。
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cache degraded", slog.String("error", err.Error()))
	}

	brokerPublisher := kafkabroker.NewPublisher(cfg.Kafka.Brokers)
	defer brokerPublisher.Close()

	events := event.NewPublisher(brokerPublisher, logger)
	repo := postgres.NewEmployeeRepository(dbPool)
	txManager := pg.NewTransactionManager(dbPool)

	opts := []employee.ServiceOption{employee.WithTransactionManager(txManager)}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, employee.WithCacheTTL(cfg.Cache.TTL))
	}
	if cfg.Cache.MetricsTTL > 0 {
		opts = append(opts, employee.WithMetricsTTL(cfg.Cache.MetricsTTL))
	}
	employeeSvc := employee.NewService(repo, rediscache.NewStore(redisClient), events, logger, opts...)

	reconciler := onboarding.NewReconciler(employeeSvc, logger)
	consumer := kafkabroker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, event.OnboardingTopics(), reconciler.Handle, logger)
	defer consumer.Close()

	logger.Info("onboarding consumer started",
		slog.String("group_id", cfg.Kafka.GroupID),
		slog.Any("topics", event.OnboardingTopics()),
	)

	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("consumer stopped with error: %v", err)
	}

	logger.Info("shutdown complete")
}
