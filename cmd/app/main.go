package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronov/eventbooking/config"
	"github.com/avoronov/eventbooking/internal/bootstrap"
	"github.com/avoronov/eventbooking/internal/cache"
	"github.com/avoronov/eventbooking/internal/kafka"
	"github.com/avoronov/eventbooking/internal/lock"
	"github.com/avoronov/eventbooking/internal/repository"
	"github.com/avoronov/eventbooking/internal/service/booking"
	"github.com/avoronov/eventbooking/internal/service/events"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	locker := lock.NewRedisLocker(cfg.Redis,
		time.Duration(cfg.Booking.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.LockRetryMillis)*time.Millisecond)
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.EventsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	eventService := events.NewEventService(eventRepo, redisCache)
	bookingEngine := booking.NewBookingEngine(
		bookingRepo,
		locker,
		producer,
		cfg.Kafka.NotificationsTopic,
		booking.WithLogger(logger),
	)

	if err := bootstrap.Run(ctx, cfg, logger, eventService, bookingEngine, userRepo); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
