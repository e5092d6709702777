package connection

import (
	"context"
	"fmt"

	dbMonitoring "github.com/Jacobbrewer1/tickets/pkg/dataaccess/monitoring"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Connect creates a Redis client and checks that the server is reachable.
func (r *Redis) Connect(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := PingRedis(connectCtx, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// PingRedis pings the given Redis client.
func PingRedis(ctx context.Context, client *redis.Client) error {
	done := dbMonitoring.ObserveRedis("health_check", "ping")
	defer done()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("error pinging redis: %w", err)
	}
	return nil
}
