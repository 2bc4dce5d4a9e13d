// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file (if present) on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/flux/core/config"
//
//	type RelayConfig struct {
//		Channel string `env:"RELAY_CHANNEL" envDefault:"flux"`
//		Addr    string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	func main() {
//		var cfg RelayConfig
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per process. A second Load for
// the same type copies the cached value without reading the environment
// again. Different types are cached independently, so nested component
// configs (for example redis.Config) can be loaded on their own as well.
package config
