// Command relay fans a Redis pub/sub channel out to websocket clients.
//
// Every client connecting to /stream receives each JSON message published
// on RELAY_CHANNEL as a text frame, with per-client backpressure. /health
// reports whether Redis is reachable.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/flux/core/config"
	"github.com/dmitrymomot/flux/core/logger"
	"github.com/dmitrymomot/flux/core/server"
	"github.com/dmitrymomot/flux/core/stream"
	"github.com/dmitrymomot/flux/integration/redis"
	fluxws "github.com/dmitrymomot/flux/integration/websocket"
)

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("relay stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	client, err := redis.Connect(ctx, cfg.Redis, redis.WithConnectLogger(log))
	if err != nil {
		return err
	}
	defer client.Close()

	subject := stream.NewPassthroughSubject[json.RawMessage](
		stream.WithLogger(log),
		stream.WithDescription("Relay("+cfg.Channel+")"),
	)
	defer subject.Close()

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log),
		server.WithOnShutdown(func() { subject.SendCompletion(stream.Finished) }),
	)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	upstream, err := redis.NewUpstream(client, cfg.Channel,
		redis.JSONDecoder[json.RawMessage](),
		redis.WithUpstreamLogger(log),
	).Attach(ctx, subject)
	if err != nil {
		return err
	}

	g.Go(srv.Run(ctx, newMux(subject, client, cfg, log)))
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-upstream.Done():
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("relay %s: %w", upstream, redis.ErrUpstreamClosed)
		}
	})

	log.Info("relay started",
		logger.Group("redis", logger.Channel(cfg.Channel)),
		logger.Group("http", logger.Addr(cfg.Server.Addr)))

	return g.Wait()
}

func newMux(subject stream.Publisher[json.RawMessage], client goredis.UniversalClient, cfg Config, log *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /stream", fluxws.Handler[json.RawMessage](subject,
		fluxws.WithAllowAnyOrigin(),
		fluxws.WithSubscriberOptions(
			fluxws.WithWindow(cfg.Window),
			fluxws.WithLogger(log),
		),
		fluxws.WithErrorHandler(func(ctx context.Context, err error) {
			log.DebugContext(ctx, "websocket client error", logger.Error(err))
		}),
	))
	mux.Handle("GET /health", healthHandler(redis.Healthcheck(client), log))
	return mux
}
