package stream_test

import (
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/flux/core/stream"
)

// recorder is a subscriber that records everything it receives.
type recorder[T any] struct {
	mu            sync.Mutex
	subscriptions []stream.Subscription
	values        []T
	completions   []stream.Completion

	initial stream.Demand
	onValue func(v T) stream.Demand
}

func newRecorder[T any](initial stream.Demand) *recorder[T] {
	return &recorder[T]{initial: initial}
}

func (r *recorder[T]) ReceiveSubscription(s stream.Subscription) {
	r.mu.Lock()
	r.subscriptions = append(r.subscriptions, s)
	r.mu.Unlock()

	if r.initial.Positive() {
		s.Request(r.initial)
	}
}

func (r *recorder[T]) ReceiveValue(v T) stream.Demand {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()

	if r.onValue != nil {
		return r.onValue(v)
	}
	return stream.None
}

func (r *recorder[T]) ReceiveCompletion(c stream.Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
}

func (r *recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func (r *recorder[T]) Completions() []stream.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stream.Completion(nil), r.completions...)
}

func (r *recorder[T]) Subscriptions() []stream.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stream.Subscription(nil), r.subscriptions...)
}

func (r *recorder[T]) Subscription() stream.Subscription {
	subs := r.Subscriptions()
	if len(subs) == 0 {
		return nil
	}
	return subs[0]
}

// countingSubscription stands in for an upstream producer's subscription.
type countingSubscription struct {
	mu       sync.Mutex
	demands  []stream.Demand
	requests atomic.Int32
	cancels  atomic.Int32
}

func (c *countingSubscription) Request(d stream.Demand) {
	c.requests.Add(1)
	c.mu.Lock()
	c.demands = append(c.demands, d)
	c.mu.Unlock()
}

func (c *countingSubscription) Cancel() {
	c.cancels.Add(1)
}

func (c *countingSubscription) Demands() []stream.Demand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]stream.Demand(nil), c.demands...)
}
