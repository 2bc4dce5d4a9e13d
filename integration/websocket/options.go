package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultWindow is the number of values a Subscriber requests up front.
	DefaultWindow = 16

	// DefaultWriteTimeout bounds a single frame write.
	DefaultWriteTimeout = 10 * time.Second
)

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*subscriberOptions)

type subscriberOptions struct {
	window       int
	writeTimeout time.Duration
	logger       *slog.Logger
}

func defaultSubscriberOptions() subscriberOptions {
	return subscriberOptions{
		window:       DefaultWindow,
		writeTimeout: DefaultWriteTimeout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithWindow sets how many frames may be queued ahead of the client.
// Defaults to DefaultWindow.
func WithWindow(n int) SubscriberOption {
	return func(o *subscriberOptions) {
		if n > 0 {
			o.window = n
		}
	}
}

// WithWriteTimeout bounds each frame write. Defaults to DefaultWriteTimeout.
func WithWriteTimeout(d time.Duration) SubscriberOption {
	return func(o *subscriberOptions) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) SubscriberOption {
	return func(o *subscriberOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type handlerConfig struct {
	upgrader       *websocket.Upgrader
	responseHeader http.Header
	subscriberOpts []SubscriberOption
	onConnect      func(context.Context, *websocket.Conn) error
	onDisconnect   func(context.Context, *websocket.Conn)
	onError        func(context.Context, error)
}

// Option configures a Handler.
type Option func(*handlerConfig)

func WithReadBuffer(size int) Option {
	return func(c *handlerConfig) {
		c.upgrader.ReadBufferSize = size
	}
}

func WithWriteBuffer(size int) Option {
	return func(c *handlerConfig) {
		c.upgrader.WriteBufferSize = size
	}
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *handlerConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *handlerConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

func WithAllowAnyOrigin() Option {
	return func(c *handlerConfig) {
		c.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

func WithSubprotocols(protocols ...string) Option {
	return func(c *handlerConfig) {
		c.upgrader.Subprotocols = protocols
	}
}

func WithUpgradeHeaders(header http.Header) Option {
	return func(c *handlerConfig) {
		c.responseHeader = header
	}
}

// WithSubscriberOptions passes options to the Subscriber created per connection.
func WithSubscriberOptions(opts ...SubscriberOption) Option {
	return func(c *handlerConfig) {
		c.subscriberOpts = append(c.subscriberOpts, opts...)
	}
}

// WithOnConnect runs fn after the upgrade and before subscribing.
// Returning an error closes the connection.
func WithOnConnect(fn func(context.Context, *websocket.Conn) error) Option {
	return func(c *handlerConfig) {
		c.onConnect = fn
	}
}

func WithOnDisconnect(fn func(context.Context, *websocket.Conn)) Option {
	return func(c *handlerConfig) {
		c.onDisconnect = fn
	}
}

func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(c *handlerConfig) {
		c.onError = fn
	}
}
