package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/flux/core/logger"
	"github.com/dmitrymomot/flux/core/stream"
)

// maxCloseReason is the control frame payload limit minus the status code.
const maxCloseReason = 123

// Subscriber is a stream.Subscriber that writes every value to a websocket
// connection as a JSON text frame.
//
// It requests a window of values on subscription and one more after every
// successful write, so a slow client throttles the publisher instead of
// growing a buffer. A completion is turned into a close frame.
type Subscriber[T any] struct {
	conn         *websocket.Conn
	window       int
	writeTimeout time.Duration
	logger       *slog.Logger
	id           uuid.UUID

	// gorilla connections allow one concurrent writer.
	writeMu sync.Mutex

	mu           sync.Mutex
	subscription stream.Subscription
	err          error

	doneOnce sync.Once
	done     chan struct{}
}

var _ stream.Subscriber[any] = (*Subscriber[any])(nil)

// NewSubscriber wraps conn. The caller keeps ownership of the connection.
func NewSubscriber[T any](conn *websocket.Conn, opts ...SubscriberOption) *Subscriber[T] {
	o := defaultSubscriberOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Subscriber[T]{
		conn:         conn,
		window:       o.window,
		writeTimeout: o.writeTimeout,
		logger:       o.logger,
		id:           uuid.New(),
		done:         make(chan struct{}),
	}
}

// ReceiveSubscription implements stream.Subscriber.
func (s *Subscriber[T]) ReceiveSubscription(subscription stream.Subscription) {
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
func (s *Subscriber[T]) ReceiveValue(v T) stream.Demand {
	payload, err := json.Marshal(v)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		s.logger.Error("failed to encode stream value",
			logger.SubscriberID(s.id.String()),
			logger.Error(err))
		return stream.Max(1)
	}

	if err := s.write(websocket.TextMessage, payload); err != nil {
		err = fmt.Errorf("%w: %w", ErrWriteFailed, err)
		s.logger.Debug("websocket write failed, cancelling subscription",
			logger.SubscriberID(s.id.String()),
			logger.Error(err))
		s.fail(err)
		return stream.None
	}
	return stream.Max(1)
}

// ReceiveCompletion implements stream.Subscriber.
func (s *Subscriber[T]) ReceiveCompletion(c stream.Completion) {
	code, reason := websocket.CloseNormalClosure, ""
	if err := c.Err(); err != nil {
		code, reason = websocket.CloseInternalServerErr, err.Error()
		if len(reason) > maxCloseReason {
			reason = reason[:maxCloseReason]
		}
	}

	s.writeMu.Lock()
	werr := s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(s.writeTimeout))
	s.writeMu.Unlock()
	if werr != nil {
		s.logger.Debug("failed to write close frame",
			logger.SubscriberID(s.id.String()),
			logger.Error(werr))
	}

	s.mu.Lock()
	s.subscription = nil
	if s.err == nil {
		s.err = c.Err()
	}
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })
}

// Cancel stops receiving values. The connection is left open.
func (s *Subscriber[T]) Cancel() {
	s.fail(nil)
}

// Done is closed once the subscriber has stopped, by completion,
// cancellation or a failed write.
func (s *Subscriber[T]) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason the subscriber stopped, if it was a failure.
func (s *Subscriber[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ID implements stream.Identifiable.
func (s *Subscriber[T]) ID() uuid.UUID {
	return s.id
}

// String implements fmt.Stringer.
func (s *Subscriber[T]) String() string {
	return "WebSocketSubscriber(" + s.conn.RemoteAddr().String() + ")"
}

func (s *Subscriber[T]) write(messageType int, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, payload)
}

func (s *Subscriber[T]) fail(err error) {
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
