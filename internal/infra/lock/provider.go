package lock

import (
	"context"
	"log/slog"
	"time"

	"attribution/config"
	"attribution/internal/domain/constants"
	"attribution/internal/domain/lifecycle"
	"attribution/internal/domain/service"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultLeaseTTL = 30 * time.Second

// LockerParams holds dependencies for Locker, injected by Fx
type LockerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewLocker creates the Locker selected by lock.driver; local is the default.
func NewLocker(params LockerParams) (service.Locker, error) {
	cfg := params.Config.Lock
	if cfg == nil {
		cfg = &config.LockConfig{}
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}

	switch cfg.Driver {
	case "", constants.LockDriverLocal:
		return NewLocalLocker(ttl), nil

	case constants.LockDriverRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("redis address is required for redis lock driver")
		}

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		params.Lc.Append(fx.Hook{
			OnStart: func(startCtx context.Context) error {
				ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
				defer cancel()

				if err := client.Ping(ctx).Err(); err != nil {
					return errors.Wrap(err, "failed to ping redis")
				}

				params.Logger.Info("Redis lease store connected", slog.String("addr", cfg.RedisAddr))

				return nil
			},
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})

		return NewRedisLocker(client, ttl), nil

	default:
		return nil, errors.Errorf("unknown lock driver: %s", cfg.Driver)
	}
}

// Module provides the Locker FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewLocker),
)
