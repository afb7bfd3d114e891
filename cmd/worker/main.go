package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devnishantt/flight-booking-service/config"
	"github.com/devnishantt/flight-booking-service/internal/cache"
	"github.com/devnishantt/flight-booking-service/internal/inventory"
	"github.com/devnishantt/flight-booking-service/internal/kafka"
	"github.com/devnishantt/flight-booking-service/internal/logging"
	"github.com/devnishantt/flight-booking-service/internal/notify"
	"github.com/devnishantt/flight-booking-service/internal/repository"
	"github.com/devnishantt/flight-booking-service/internal/service/booking"
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

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	priceCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.PriceCacheTTLSecond)*time.Second)
	defer priceCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	flightClient := inventory.NewClient(cfg.Inventory, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightClient,
		priceCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithDeductionRetries(cfg.Booking.DeductionRetries),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	notifier := notify.NewNotifier(logger)
	go func() {
		if err := consumer.Consume(ctx, notifier.Notify); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", zap.Error(err))
		}
	}()

	sweepInterval := time.Duration(cfg.Worker.SweepIntervalMinutes) * time.Minute
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	hoursOld := cfg.Worker.CancelOlderThanHours
	if hoursOld <= 0 {
		hoursOld = 24
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	logger.Info("expiry sweep scheduled",
		zap.Duration("interval", sweepInterval),
		zap.Int("hours_old", hoursOld))

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			result, err := bookingService.CancelOldBookings(ctx, hoursOld)
			if err != nil {
				logger.Error("expiry sweep failed", zap.Error(err))
				continue
			}
			logger.Info("expiry sweep completed",
				zap.Int("cancelled", result.CancelledCount),
				zap.Int("errors", len(result.Errors)),
				zap.Duration("duration", time.Since(start)))
			for _, sweepErr := range result.Errors {
				logger.Warn("expiry sweep item failed",
					zap.Int64("booking_id", sweepErr.BookingID),
					zap.String("message", sweepErr.Message))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
