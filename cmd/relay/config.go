package main

import (
	"log/slog"
	"os"

	"github.com/dmitrymomot/flux/core/server"
	"github.com/dmitrymomot/flux/integration/redis"
)

// Config is the relay configuration, read from the environment and an
// optional .env file.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"flux-relay"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Channel is the Redis pub/sub channel relayed to websocket clients.
	Channel string `env:"RELAY_CHANNEL" envDefault:"flux"`
	// Window is the per-client number of frames that may be in flight.
	Window int `env:"RELAY_WINDOW" envDefault:"16"`

	Server server.Config
	Redis  redis.Config
}

func newLogger(cfg Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", cfg.AppName))
}
