package stream

import (
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/flux/core/logger"
)

// PassthroughSubject broadcasts values and completion to every attached
// subscriber. It keeps no values: a subscriber with no outstanding demand
// misses whatever is sent meanwhile.
//
// The subject is single use. Once SendCompletion has been called, further
// values are ignored and late subscribers immediately receive the cached
// completion.
//
// Upstream producers attach through SendSubscription. They are asked for
// Unlimited demand as soon as any subscriber requests anything.
//
// All methods are safe for concurrent use.
type PassthroughSubject[T any] struct {
	mu sync.Mutex

	active                 bool
	completion             *Completion
	downstreams            *SubscriberList[*conduit[T]]
	upstreams              []Subscription
	hasAnyDownstreamDemand bool
	closed                 bool

	description string
	logger      *slog.Logger
}

var _ Subject[any] = (*PassthroughSubject[any])(nil)

// NewPassthroughSubject creates an active subject.
//
// Example:
//
//	subject := stream.NewPassthroughSubject[string](stream.WithLogger(logger))
//	defer subject.Close()
func NewPassthroughSubject[T any](opts ...SubjectOption) *PassthroughSubject[T] {
	o := subjectOptions{
		description: "PassthroughSubject",
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &PassthroughSubject[T]{
		active:      true,
		downstreams: NewSubscriberList[*conduit[T]](),
		description: o.description,
		logger:      o.logger,
	}
}

// Subscribe attaches s. On an active subject s receives its own
// subscription; on a completed one it receives EmptySubscription followed
// by the cached completion.
func (s *PassthroughSubject[T]) Subscribe(subscriber Subscriber[T]) {
	s.mu.Lock()
	if !s.active {
		completion := *s.completion
		s.mu.Unlock()

		subscriber.ReceiveSubscription(EmptySubscription)
		subscriber.ReceiveCompletion(completion)
		return
	}
	c := newConduit(s, subscriber)
	id := c.downstream.ID()
	s.mu.Unlock()

	s.logger.Debug("subscriber attached",
		logger.Component(s.description),
		logger.Ticket(uint64(c.ticket)),
		logger.SubscriberID(id.String()))

	subscriber.ReceiveSubscription(c)
}

// SendSubscription registers a subscription to an upstream producer.
// If a subscriber has already asked for values, the upstream is asked for
// Unlimited right away. After Close the subscription is cancelled instead.
func (s *PassthroughSubject[T]) SendSubscription(subscription Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		subscription.Cancel()
		return
	}
	s.upstreams = append(s.upstreams, subscription)
	primed := s.hasAnyDownstreamDemand
	s.mu.Unlock()

	if primed {
		subscription.Request(Unlimited)
	}
}

// Send broadcasts v to every subscriber in attach order. Subscribers without
// outstanding demand drop it. Before any subscriber has requested values,
// and after completion, v is discarded.
func (s *PassthroughSubject[T]) Send(v T) {
	s.mu.Lock()
	if !s.active || !s.hasAnyDownstreamDemand {
		s.mu.Unlock()
		return
	}
	downstreams := s.downstreams.Snapshot()
	s.mu.Unlock()

	for _, c := range downstreams {
		c.offer(v)
	}
}

// SendCompletion terminates the subject and delivers c to every subscriber
// exactly once. Only the first call has any effect.
//
// The broadcast runs without the subject's lock. Subscribers cancelling
// concurrently are safe, but the order in which they observe the completion
// is only fixed by attach order at the time of the call.
func (s *PassthroughSubject[T]) SendCompletion(c Completion) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.completion = &c
	downstreams := s.downstreams.RemoveAll()
	s.mu.Unlock()

	s.logger.Debug("subject completed",
		logger.Component(s.description),
		logger.Completion(c.String()),
		logger.Count("subscribers", len(downstreams)))

	for _, d := range downstreams {
		d.finish(c)
	}
}

// Close cancels every upstream subscription. Subscriptions sent afterwards
// are cancelled on arrival. Close does not complete the subject.
func (s *PassthroughSubject[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	upstreams := s.upstreams
	s.upstreams = nil
	s.mu.Unlock()

	for _, u := range upstreams {
		u.Cancel()
	}

	s.logger.Debug("subject closed",
		logger.Component(s.description),
		logger.Count("upstreams", len(upstreams)))
}

// String implements fmt.Stringer.
func (s *PassthroughSubject[T]) String() string {
	return s.description
}

// acknowledgeDownstreamDemand primes the upstreams the first time any
// subscriber requests values. Upstreams run unbounded from then on.
func (s *PassthroughSubject[T]) acknowledgeDownstreamDemand() {
	s.mu.Lock()
	if s.hasAnyDownstreamDemand {
		s.mu.Unlock()
		return
	}
	s.hasAnyDownstreamDemand = true
	upstreams := append([]Subscription(nil), s.upstreams...)
	s.mu.Unlock()

	s.logger.Debug("downstream demand acknowledged",
		logger.Component(s.description),
		logger.Count("upstreams", len(upstreams)))

	for _, u := range upstreams {
		u.Request(Unlimited)
	}
}

// disassociate removes a released conduit while the subject is active.
// Once completed, the registry has already been handed to the final broadcast.
func (s *PassthroughSubject[T]) disassociate(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.downstreams.Remove(t)
	}
}
