package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devnishantt/flight-booking-service/config"
	"github.com/devnishantt/flight-booking-service/internal/bootstrap"
	"github.com/devnishantt/flight-booking-service/internal/cache"
	"github.com/devnishantt/flight-booking-service/internal/inventory"
	"github.com/devnishantt/flight-booking-service/internal/kafka"
	"github.com/devnishantt/flight-booking-service/internal/logging"
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

	if err := bootstrap.Run(ctx, cfg, bookingService, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
