package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/dataaccess/connection"
	"github.com/alexliesenfeld/health"
)

func (a *App) healthCheck() Controller {
	statusListener := func(what string) func(ctx context.Context, name string, state health.CheckState) {
		return func(ctx context.Context, name string, state health.CheckState) {
			a.Info(what+" health check status changed",
				slog.String("name", name),
				slog.String("state", string(state.Status)),
			)
		}
	}

	opts := []health.CheckerOption{
		// Set a TTL of 1 second for the results of the checks.
		health.WithCacheDuration(1 * time.Second),

		// Set a timeout of 2 seconds for the checks.
		health.WithTimeout(2 * time.Second),

		// Monitor the health of the database (MongoDB).
		health.WithCheck(health.Check{
			Name: "MongoDB",
			Check: func(ctx context.Context) error {
				return connection.Ping(ctx, dataaccess.MongoDB)
			},
			Timeout:        2 * time.Second,
			StatusListener: statusListener("MongoDB"),
		}),

		// Monitor the health of the Discord API.
		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "Discord_API",
			Check: func(ctx context.Context) error {
				if _, err := a.Session().GatewayBot(); err != nil {
					return fmt.Errorf("failed to ping Discord API: %w", err)
				}
				return nil
			},
			Timeout:        3 * time.Second,
			StatusListener: statusListener("Discord API"),
		}),
	}

	if a.redis != nil {
		// Ticket numbers are counted in Redis, so it is required.
		opts = append(opts, health.WithCheck(health.Check{
			Name: "Redis",
			Check: func(ctx context.Context) error {
				return connection.PingRedis(ctx, a.redis)
			},
			Timeout:        2 * time.Second,
			StatusListener: statusListener("Redis"),
		}))
	}

	return health.NewHandler(health.NewChecker(opts...)).ServeHTTP
}
