package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flux/core/logger"
)

// ConnectOption configures Connect.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	logger *slog.Logger
}

// WithConnectLogger sets the logger used to report failed pings.
// Defaults to a discarding logger.
func WithConnectLogger(logger *slog.Logger) ConnectOption {
	return func(o *connectOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Connect creates a Redis client and waits until it answers a ping.
// Pings are retried up to RetryAttempts times with a growing interval.
func Connect(ctx context.Context, cfg Config, opts ...ConnectOption) (*redis.Client, error) {
	o := connectOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	redisOpts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(redisOpts)

	attempts := max(cfg.RetryAttempts, 1)
	var pingErr error
	for attempt := range attempts {
		if pingErr = client.Ping(ctx).Err(); pingErr == nil {
			return client, nil
		}
		if attempt == attempts-1 {
			break
		}

		// Linear growth keeps the worst case bounded by ConnectTimeout anyway.
		wait := cfg.RetryInterval * time.Duration(attempt+1)
		o.logger.WarnContext(ctx, "redis ping failed, retrying",
			logger.RetryCount(attempt+1),
			logger.Duration(wait),
			logger.Error(pingErr))
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(wait):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, pingErr)
}

// Healthcheck returns a function that pings Redis.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
