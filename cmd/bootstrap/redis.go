package bootstrap

import (
	"context"
	"log/slog"

	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		fx.Annotate(
			NewRedisClient,
			fx.As(new(redis.UniversalClient)),
		),
	),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return errs.Wrapf(err, "redis ping %s", cfg.Redis.Addr)
			}
			logger.Info("redis connected", "addr", cfg.Redis.Addr)
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client
}
