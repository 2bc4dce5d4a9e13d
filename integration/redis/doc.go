// Package redis connects streams to Redis pub/sub.
//
// It wraps the go-redis client with connection validation and retry logic,
// and provides two adapters around a stream.Subject:
//
//   - Upstream subscribes to a Redis channel and feeds a subject, acting as
//     the subject's upstream producer.
//   - Sink is a stream.Subscriber that publishes every value it receives to
//     a Redis channel.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Connect pings the server until it answers or RetryAttempts is exhausted,
// waiting a growing multiple of RetryInterval between attempts, all bounded
// by ConnectTimeout. Both redis:// and rediss:// URLs are accepted.
//
// # Upstream
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	subject := stream.NewPassthroughSubject[Price]()
//	defer subject.Close()
//
//	up := redis.NewUpstream(client, "prices", redis.JSONDecoder[Price]())
//	if _, err := up.Attach(ctx, subject); err != nil {
//		return err
//	}
//
// The upstream only forwards messages while it holds demand from the
// subject. Redis pub/sub has no replay, so messages arriving before the
// first subscriber requests values are lost. When Redis closes the channel
// unexpectedly the subject is completed with ErrUpstreamClosed; cancelling
// the subscription (or subject.Close) stops the loop without completing.
//
// # Sink
//
//	sink := redis.NewSink(client, "prices-out", redis.JSONEncoder[Price](),
//		redis.WithSinkWindow(32))
//	subject.Subscribe(sink)
//
// The sink keeps a window of demand open and cancels its subscription after
// the first failed PUBLISH; Err reports why it stopped.
//
// # Error Handling
//
// Errors can be checked with errors.Is:
//
//   - ErrEmptyConnectionURL, ErrFailedToParseRedisConnString, ErrRedisNotReady from Connect
//   - ErrHealthcheckFailed from Healthcheck
//   - ErrEmptyChannel, ErrSubscribeFailed from Upstream.Attach
//   - ErrUpstreamClosed as the failure completion of a subject
//   - ErrPublishFailed from Sink.Err
package redis
