package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load is given a nil pointer.
var ErrNilConfig = errors.New("config target must be a non-nil pointer")

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)
)

// Load parses environment variables into cfg. The result is cached per type.
// A missing .env file is not an error.
func Load[T any](cfg *T, opts ...env.Options) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*cfg = cached.(T)
		return nil
	}

	var o env.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return fmt.Errorf("failed to parse %s from environment: %w", key, err)
	}

	cache[key] = *cfg
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T, opts ...env.Options) {
	if err := Load(cfg, opts...); err != nil {
		panic(err)
	}
}
