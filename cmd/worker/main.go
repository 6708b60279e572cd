package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronov/eventbooking/config"
	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/avoronov/eventbooking/internal/email"
	"github.com/avoronov/eventbooking/internal/kafka"
	"github.com/avoronov/eventbooking/internal/lock"
	"github.com/avoronov/eventbooking/internal/repository"
	"github.com/avoronov/eventbooking/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	locker := lock.NewRedisLocker(cfg.Redis,
		time.Duration(cfg.Booking.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.LockRetryMillis)*time.Millisecond)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingEngine := booking.NewBookingEngine(
		bookingRepo,
		locker,
		producer,
		cfg.Kafka.NotificationsTopic,
		booking.WithLogger(logger),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic,
		kafka.WithSkipCallback(func(err error) {
			logger.Warn("skip notification", zap.Error(err))
		}))
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, notification kafka.BookingNotification) error {
			return emailSender.Send(ctx, notification)
		}); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.PromotionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			if err := sweepWaitingLists(ctx, bookingRepo, eventRepo, bookingEngine, logger); err != nil {
				logger.Warn("waiting list sweep", zap.Error(err))
			}
		case s := <-sig:
			logger.Info("received signal, shutting down", zap.String("signal", s.String()))
			return
		}
	}
}

// sweepWaitingLists promotes waiting-list bookings on any event that has
// free places, catching promotions missed at cancellation time.
func sweepWaitingLists(ctx context.Context, bookings repository.BookingRepository, events repository.EventRepository, engine booking.BookingUseCase, logger *zap.Logger) error {
	eventIDs, err := bookings.ListEventIDsWithStatus(ctx, domain.BookingStatusWaitingList)
	if err != nil {
		return err
	}

	for _, id := range eventIDs {
		event, err := events.GetByID(ctx, id)
		if err != nil {
			logger.Warn("load event for sweep", zap.String("event_id", id), zap.Error(err))
			continue
		}
		promoted, err := engine.PromoteWaitingList(ctx, *event)
		if err != nil {
			logger.Warn("promote waiting list", zap.String("event_id", id), zap.Error(err))
			continue
		}
		if len(promoted) > 0 {
			logger.Info("promoted from waiting list", zap.String("event_id", id), zap.Int("count", len(promoted)))
		}
	}
	return nil
}
