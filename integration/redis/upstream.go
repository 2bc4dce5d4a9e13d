package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flux/core/logger"
	"github.com/dmitrymomot/flux/core/stream"
)

// Upstream feeds a stream.Subject from a Redis pub/sub channel.
//
// Messages are only forwarded while the subject has demand outstanding
// towards this upstream; messages that arrive earlier are dropped, never
// buffered. A PassthroughSubject asks for Unlimited as soon as one of its
// subscribers requests values.
type Upstream[T any] struct {
	client  redis.UniversalClient
	channel string
	decode  Decoder[T]
	logger  *slog.Logger
}

// UpstreamOption configures an Upstream.
type UpstreamOption func(*upstreamOptions)

type upstreamOptions struct {
	logger *slog.Logger
}

// WithUpstreamLogger sets the logger. Defaults to a discarding logger.
func WithUpstreamLogger(logger *slog.Logger) UpstreamOption {
	return func(o *upstreamOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewUpstream creates an upstream reading channel through client.
//
// Example:
//
//	subject := stream.NewPassthroughSubject[Price]()
//	up := redis.NewUpstream(client, "prices", redis.JSONDecoder[Price]())
//	sub, err := up.Attach(ctx, subject)
func NewUpstream[T any](client redis.UniversalClient, channel string, decode Decoder[T], opts ...UpstreamOption) *Upstream[T] {
	o := upstreamOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return &Upstream[T]{
		client:  client,
		channel: channel,
		decode:  decode,
		logger:  o.logger,
	}
}

// Attach subscribes to the Redis channel and hands the resulting
// subscription to subject. The receive loop runs until the subscription is
// cancelled, ctx is done or Redis closes the channel; in the last case the
// subject is completed with ErrUpstreamClosed.
func (u *Upstream[T]) Attach(ctx context.Context, subject stream.Subject[T]) (*UpstreamSubscription[T], error) {
	if u.channel == "" {
		return nil, ErrEmptyChannel
	}

	pubsub := u.client.Subscribe(ctx, u.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Join(ErrSubscribeFailed, err)
	}

	sub := newUpstreamSubscription(subject, pubsub.Channel(), pubsub.Close, u.decode, u.logger, u.channel)
	go sub.run(ctx)

	u.logger.InfoContext(ctx, "redis upstream attached", logger.Channel(u.channel))
	subject.SendSubscription(sub)
	return sub, nil
}

// UpstreamSubscription is the subscription an Upstream hands to its subject.
type UpstreamSubscription[T any] struct {
	subject  stream.Subject[T]
	messages <-chan *redis.Message
	closer   func() error
	decode   Decoder[T]
	logger   *slog.Logger
	channel  string

	mu     sync.Mutex
	demand stream.Demand

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func newUpstreamSubscription[T any](
	subject stream.Subject[T],
	messages <-chan *redis.Message,
	closer func() error,
	decode Decoder[T],
	log *slog.Logger,
	channel string,
) *UpstreamSubscription[T] {
	return &UpstreamSubscription[T]{
		subject:  subject,
		messages: messages,
		closer:   closer,
		decode:   decode,
		logger:   log,
		channel:  channel,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Request implements stream.Subscription.
func (s *UpstreamSubscription[T]) Request(d stream.Demand) {
	d.AssertNonZero()

	s.mu.Lock()
	s.demand = s.demand.Add(d)
	total := s.demand
	s.mu.Unlock()

	s.logger.Debug("redis upstream demand requested",
		logger.Channel(s.channel),
		logger.Demand(total.String()))
}

// Cancel implements stream.Subscription. It closes the Redis subscription
// and does not wait for the receive loop; use Done for that.
func (s *UpstreamSubscription[T]) Cancel() {
	s.once.Do(func() {
		close(s.stop)
		if err := s.closer(); err != nil {
			s.logger.Warn("failed to close redis subscription",
				logger.Channel(s.channel),
				logger.Error(err))
		}
	})
}

// Done is closed once the receive loop has exited.
func (s *UpstreamSubscription[T]) Done() <-chan struct{} {
	return s.done
}

// String implements fmt.Stringer.
func (s *UpstreamSubscription[T]) String() string {
	return "RedisUpstream(" + s.channel + ")"
}

func (s *UpstreamSubscription[T]) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			s.Cancel()
			return
		case msg, ok := <-s.messages:
			if !ok {
				select {
				case <-s.stop:
				default:
					s.logger.WarnContext(ctx, "redis channel closed",
						logger.Channel(s.channel))
					s.subject.SendCompletion(stream.Failure(ErrUpstreamClosed))
				}
				return
			}
			s.forward(ctx, msg)
		}
	}
}

func (s *UpstreamSubscription[T]) forward(ctx context.Context, msg *redis.Message) {
	v, err := s.decode(msg.Payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to decode redis message",
			logger.Channel(s.channel),
			logger.Error(err))
		return
	}

	s.mu.Lock()
	if !s.demand.Positive() {
		s.mu.Unlock()
		return
	}
	s.demand = s.demand.Sub(stream.Max(1))
	s.mu.Unlock()

	s.subject.Send(v)
}
