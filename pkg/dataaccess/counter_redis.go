package dataaccess

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const redisCounterName = "redis_counter"

type redisCounter struct {
	l       *slog.Logger
	client  *redis.Client
	tickets TicketDal
}

// NewRedisCounter creates a counter kept in Redis with INCR. A guild's sequence is seeded from its ticket count
// when its key does not exist.
func NewRedisCounter(logger *slog.Logger, client *redis.Client, tickets TicketDal) CounterDal {
	return &redisCounter{
		l:       logger.With(slog.String(logging.KeyDal, redisCounterName)),
		client:  client,
		tickets: tickets,
	}
}

func counterKey(guildID string) string {
	return fmt.Sprintf("tickets:counter:%s", guildID)
}

func (c *redisCounter) NextNumber(ctx context.Context, guildID string) (int, error) {
	key := counterKey(guildID)

	exists, err := c.exists(ctx, key)
	if err != nil {
		return 0, err
	}

	if !exists {
		count, err := c.tickets.CountTickets(ctx, guildID)
		if err != nil {
			return 0, fmt.Errorf("error seeding counter: %w", err)
		}

		done := monitoring.ObserveRedis(redisCounterName, "setnx")
		seeded, err := c.client.SetNX(ctx, key, count, 0).Result()
		done()
		if err != nil {
			return 0, fmt.Errorf("error seeding counter: %w", err)
		}
		if seeded {
			c.l.Debug("Seeded ticket counter",
				slog.String(logging.KeyGuild, guildID),
				slog.Int64("count", count),
			)
		}
	}

	defer monitoring.ObserveRedis(redisCounterName, "incr")()

	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("error incrementing counter: %w", err)
	}
	return int(n), nil
}

func (c *redisCounter) exists(ctx context.Context, key string) (bool, error) {
	defer monitoring.ObserveRedis(redisCounterName, "exists")()

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error checking counter: %w", err)
	}
	return n > 0, nil
}
