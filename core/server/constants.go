package server

import "time"

const (
	// DefaultReadTimeout bounds reading the request head and body.
	DefaultReadTimeout = 15 * time.Second

	// DefaultIdleTimeout is how long keep-alive connections may sit idle.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)
