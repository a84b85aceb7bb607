package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Claimer marks keys as taken for a while; the first caller wins.
type Claimer struct {
	RDB *redis.Client
}

// Claim reports whether this call set key. A false result means someone
// else already holds it.
func (c *Claimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.RDB.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("rdb.SetNX: %w", err)
	}
	return ok, nil
}

// Idempotency remembers which order a customer's Idempotency-Key produced.
type Idempotency struct {
	RDB *redis.Client
}

// Lookup returns the order id stored for key, if any.
func (i *Idempotency) Lookup(ctx context.Context, customerID uuid.UUID, key string) (uuid.UUID, bool, error) {
	v, err := i.RDB.Get(ctx, fmt.Sprintf(KeyIdemCheckout, customerID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("rdb.Get: %w", err)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("uuid.Parse[%s]: %w", v, err)
	}
	return id, true, nil
}

func (i *Idempotency) Remember(ctx context.Context, customerID uuid.UUID, key string, orderID uuid.UUID) error {
	err := i.RDB.Set(ctx, fmt.Sprintf(KeyIdemCheckout, customerID, key), orderID.String(), TTLIdempotency).Err()
	if err != nil {
		return fmt.Errorf("rdb.Set: %w", err)
	}
	return nil
}
