package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-gifting/internal/config"
	"ms-gifting/internal/database/migrations"
	"ms-gifting/internal/draft"
	"ms-gifting/internal/gift"
	giftdb "ms-gifting/internal/gift/db"
	"ms-gifting/internal/gift/gift_api"
	giftkafka "ms-gifting/internal/gift/kafka"
	giftredis "ms-gifting/internal/gift/redis"
	"ms-gifting/internal/kafka"
	"ms-gifting/internal/logger"
	"ms-gifting/internal/session"
	"ms-gifting/internal/stats"
	"ms-gifting/internal/stats/stats_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Gifting Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrateOpts := migrations.DefaultOptions()
	if migrateOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrateOpts)
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		if err := runner.Close(); err != nil {
			logger.Warn("DATABASE", fmt.Sprintf("Failed to close migrator: %v", err))
		}
	}

	var kafkaProducer *kafka.Producer
	var giftPublisher gift.Publisher
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers)
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{cfg.Kafka.Topics.GiftCreated}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		giftPublisher = &giftkafka.Publisher{
			Producer: kafkaProducer,
			Topic:    cfg.Kafka.Topics.GiftCreated,
			Brokers:  cfg.Kafka.Brokers,
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, gift events will not be published")
	}

	sessionStore := session.NewRedisStore(redisClient)
	sessionManager := session.NewManager(sessionStore, cfg.Session.Secret, cfg.Session.TTL)

	draftStore := draft.NewRedisStore(redisClient, draft.DefaultTTL)

	database := &giftdb.DB{Bun: bunDB}
	giftService := gift.NewService(
		database,
		giftredis.NewRedis(redisClient),
		giftPublisher,
		logger,
	)
	sequencer := draft.NewSequencer(draftStore, giftService)

	statsService := stats.NewService(bunDB, logger)

	sseHandler := gift_api.NewSSEHandler(logger)
	handler := gift_api.NewHandler(giftService, sequencer, sessionManager, database, logger)
	statsHandler := stats_api.NewHandler(statsService, sessionManager, logger)

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	defer cancelConsumer()
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.GiftCreated, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.Start(consumerCtx, sseHandler.EmitGift)
		logger.Info("KAFKA", "Gift event consumer feeding SSE streams")
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	handler.RegisterRoutes(r, sseHandler)
	logger.Info("ROUTER", "Gifting routes registered under /api/session and /api/gifting")

	statsHandler.RegisterRoutes(r)
	logger.Info("ROUTER", "Statistics routes registered under /api/stats and /api/events")

	// No WriteTimeout: the SSE streams hold their response open indefinitely.
	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Gifting Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cancelConsumer()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Gifting Service shutdown complete")
	}
}
