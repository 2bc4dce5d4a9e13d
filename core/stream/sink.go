package stream

import (
	"sync"

	"github.com/google/uuid"
)

type sinkOptions struct {
	initial   Demand
	replenish Demand
}

// SinkOption configures a Sink.
type SinkOption func(*sinkOptions)

// WithInitialDemand sets the demand requested when the subscription arrives.
// Defaults to Unlimited. Non-positive values are ignored.
func WithInitialDemand(d Demand) SinkOption {
	return func(o *sinkOptions) {
		if d.Positive() {
			o.initial = d
		}
	}
}

// WithReplenish sets the extra demand returned after every value.
// Defaults to None.
func WithReplenish(d Demand) SinkOption {
	return func(o *sinkOptions) {
		o.replenish = d
	}
}

// Sink is a subscriber built from closures. It requests its initial demand
// as soon as it is subscribed and can be cancelled at any time.
type Sink[T any] struct {
	mu           sync.Mutex
	subscription Subscription
	done         bool

	receiveValue      func(T)
	receiveCompletion func(Completion)
	opts              sinkOptions
	id                uuid.UUID
}

var _ Subscriber[any] = (*Sink[any])(nil)

// NewSink creates a sink. Either callback may be nil.
func NewSink[T any](receiveValue func(T), receiveCompletion func(Completion), opts ...SinkOption) *Sink[T] {
	o := sinkOptions{initial: Unlimited, replenish: None}
	for _, opt := range opts {
		opt(&o)
	}
	if receiveValue == nil {
		receiveValue = func(T) {}
	}
	if receiveCompletion == nil {
		receiveCompletion = func(Completion) {}
	}
	return &Sink[T]{
		receiveValue:      receiveValue,
		receiveCompletion: receiveCompletion,
		opts:              o,
		id:                uuid.New(),
	}
}

// Subscribe attaches a new sink to p and returns it as a handle for cancellation.
//
// Example:
//
//	sink := stream.Subscribe(subject, func(v int) {
//	    fmt.Println(v)
//	}, nil)
//	defer sink.Cancel()
func Subscribe[T any](p Publisher[T], receiveValue func(T), receiveCompletion func(Completion), opts ...SinkOption) *Sink[T] {
	s := NewSink(receiveValue, receiveCompletion, opts...)
	p.Subscribe(s)
	return s
}

// ReceiveSubscription implements Subscriber. A sink accepts one
// subscription; any later one is cancelled.
func (s *Sink[T]) ReceiveSubscription(subscription Subscription) {
	s.mu.Lock()
	if s.subscription != nil || s.done {
		s.mu.Unlock()
		subscription.Cancel()
		return
	}
	s.subscription = subscription
	s.mu.Unlock()

	subscription.Request(s.opts.initial)
}

// ReceiveValue implements Subscriber.
func (s *Sink[T]) ReceiveValue(v T) Demand {
	s.receiveValue(v)
	return s.opts.replenish
}

// ReceiveCompletion implements Subscriber.
func (s *Sink[T]) ReceiveCompletion(c Completion) {
	s.mu.Lock()
	s.subscription = nil
	s.done = true
	s.mu.Unlock()

	s.receiveCompletion(c)
}

// Cancel cancels the subscription, if any. Safe to call more than once.
func (s *Sink[T]) Cancel() {
	s.mu.Lock()
	subscription := s.subscription
	s.subscription = nil
	s.done = true
	s.mu.Unlock()

	if subscription != nil {
		subscription.Cancel()
	}
}

// ID implements Identifiable.
func (s *Sink[T]) ID() uuid.UUID {
	return s.id
}

// String implements fmt.Stringer.
func (s *Sink[T]) String() string {
	return "Sink"
}
