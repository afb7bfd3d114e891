package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/devnishantt/flight-booking-service/config"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps recently fetched flight unit prices so bursts of
// bookings against the same flight do not hammer the inventory service.
// A zero TTL disables caching.
type RedisCache struct {
	client   *redis.Client
	priceTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, priceTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		priceTTL: priceTTL,
	}
}

// GetPrice returns the cached unit price and whether it was present.
func (c *RedisCache) GetPrice(ctx context.Context, flightID int64) (money.Cents, bool, error) {
	if c.priceTTL <= 0 {
		return 0, false, nil
	}
	raw, err := c.client.Get(ctx, priceKey(flightID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	price, err := money.Parse(raw)
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

func (c *RedisCache) SetPrice(ctx context.Context, flightID int64, price money.Cents) error {
	if c.priceTTL <= 0 {
		return nil
	}
	return c.client.Set(ctx, priceKey(flightID), price.String(), c.priceTTL).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func priceKey(flightID int64) string {
	return fmt.Sprintf("cache:flight:%d:price", flightID)
}
