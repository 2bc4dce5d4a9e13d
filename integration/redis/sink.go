package redis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flux/core/logger"
	"github.com/dmitrymomot/flux/core/stream"
)

const (
	// DefaultSinkWindow is the number of values a Sink requests up front.
	DefaultSinkWindow = 64

	// DefaultPublishTimeout bounds a single PUBLISH call.
	DefaultPublishTimeout = 5 * time.Second
)

// Sink is a stream.Subscriber that publishes every value to a Redis channel.
//
// It keeps a fixed window of demand open: Window values are requested on
// subscription and each successful publish asks for one more. A failed
// publish cancels the subscription.
type Sink[T any] struct {
	client  redis.UniversalClient
	channel string
	encode  Encoder[T]
	window  int
	timeout time.Duration
	logger  *slog.Logger
	id      uuid.UUID

	mu           sync.Mutex
	subscription stream.Subscription
	err          error

	doneOnce sync.Once
	done     chan struct{}
}

var _ stream.Subscriber[any] = (*Sink[any])(nil)

// SinkOption configures a Sink.
type SinkOption func(*sinkOptions)

type sinkOptions struct {
	window  int
	timeout time.Duration
	logger  *slog.Logger
}

// WithSinkWindow sets how many values may be in flight. Defaults to DefaultSinkWindow.
func WithSinkWindow(n int) SinkOption {
	return func(o *sinkOptions) {
		if n > 0 {
			o.window = n
		}
	}
}

// WithPublishTimeout bounds each PUBLISH call. Defaults to DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) SinkOption {
	return func(o *sinkOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSinkLogger sets the logger. Defaults to a discarding logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(o *sinkOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSink creates a sink publishing to channel through client.
//
// Example:
//
//	sink := redis.NewSink(client, "prices", redis.JSONEncoder[Price]())
//	subject.Subscribe(sink)
//	<-sink.Done()
func NewSink[T any](client redis.UniversalClient, channel string, encode Encoder[T], opts ...SinkOption) *Sink[T] {
	o := sinkOptions{
		window:  DefaultSinkWindow,
		timeout: DefaultPublishTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Sink[T]{
		client:  client,
		channel: channel,
		encode:  encode,
		window:  o.window,
		timeout: o.timeout,
		logger:  o.logger,
		id:      uuid.New(),
		done:    make(chan struct{}),
	}
}

// ReceiveSubscription implements stream.Subscriber.
func (s *Sink[T]) ReceiveSubscription(subscription stream.Subscription) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		subscription.Cancel()
		return
	default:
	}
	if s.subscription != nil {
		s.mu.Unlock()
		subscription.Cancel()
		return
	}
	s.subscription = subscription
	s.mu.Unlock()

	subscription.Request(stream.Max(s.window))
}

// ReceiveValue implements stream.Subscriber.
func (s *Sink[T]) ReceiveValue(v T) stream.Demand {
	payload, err := s.encode(v)
	if err != nil {
		s.logger.Error("failed to encode value for redis",
			logger.Channel(s.channel),
			logger.Error(err))
		return stream.Max(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		err = fmt.Errorf("%w: %w", ErrPublishFailed, err)
		s.logger.Error("redis publish failed, cancelling subscription",
			logger.Channel(s.channel),
			logger.Error(err))
		s.fail(err)
		return stream.None
	}
	return stream.Max(1)
}

// ReceiveCompletion implements stream.Subscriber.
func (s *Sink[T]) ReceiveCompletion(c stream.Completion) {
	s.logger.Debug("redis sink completed",
		logger.Channel(s.channel),
		logger.Completion(c.String()))

	s.mu.Lock()
	s.subscription = nil
	if s.err == nil {
		s.err = c.Err()
	}
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })
}

// Cancel stops the sink without an error.
func (s *Sink[T]) Cancel() {
	s.fail(nil)
}

// Done is closed when the sink has finished, by completion or cancellation.
func (s *Sink[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the failure that stopped the sink, if any.
func (s *Sink[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ID implements stream.Identifiable.
func (s *Sink[T]) ID() uuid.UUID {
	return s.id
}

// String implements fmt.Stringer.
func (s *Sink[T]) String() string {
	return "RedisSink(" + s.channel + ")"
}

func (s *Sink[T]) fail(err error) {
	s.mu.Lock()
	subscription := s.subscription
	s.subscription = nil
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()

	if subscription != nil {
		subscription.Cancel()
	}
	s.doneOnce.Do(func() { close(s.done) })
}
