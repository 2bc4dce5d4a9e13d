package stream

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// AnySubscriber hides a concrete subscriber behind one uniform type so
// heterogeneous subscribers can be stored side by side.
//
// It only carries the value and completion path. ReceiveSubscription is a
// no-op: by the time a subscriber is erased, its subscription has already
// been handed to it directly.
type AnySubscriber[T any] struct {
	box atomic.Pointer[subscriberBox[T]]
	id  uuid.UUID
}

type subscriberBox[T any] struct {
	subscriber Subscriber[T]
}

// NewAnySubscriber wraps s. Wrapping an *AnySubscriber shares its subscriber
// and identity instead of nesting.
func NewAnySubscriber[T any](s Subscriber[T]) *AnySubscriber[T] {
	if inner, ok := s.(*AnySubscriber[T]); ok {
		a := &AnySubscriber[T]{id: inner.id}
		a.box.Store(inner.box.Load())
		return a
	}

	a := &AnySubscriber[T]{id: uuid.New()}
	if identifiable, ok := s.(Identifiable); ok {
		a.id = identifiable.ID()
	}
	a.box.Store(&subscriberBox[T]{subscriber: s})
	return a
}

// ID returns the identity of the wrapped subscriber.
func (a *AnySubscriber[T]) ID() uuid.UUID {
	return a.id
}

// ReceiveSubscription does nothing.
func (a *AnySubscriber[T]) ReceiveSubscription(Subscription) {}

// ReceiveValue forwards v. After release it drops v and asks for nothing.
func (a *AnySubscriber[T]) ReceiveValue(v T) Demand {
	box := a.box.Load()
	if box == nil {
		return None
	}
	return box.subscriber.ReceiveValue(v)
}

// ReceiveCompletion forwards c unless the handle has been released.
func (a *AnySubscriber[T]) ReceiveCompletion(c Completion) {
	if box := a.box.Load(); box != nil {
		box.subscriber.ReceiveCompletion(c)
	}
}

// String delegates to the wrapped subscriber when it is a fmt.Stringer.
func (a *AnySubscriber[T]) String() string {
	box := a.box.Load()
	if box == nil {
		return "AnySubscriber(released)"
	}
	if s, ok := box.subscriber.(fmt.Stringer); ok {
		return s.String()
	}
	return "AnySubscriber"
}

// Mirror delegates to the wrapped subscriber when it is Reflectable.
func (a *AnySubscriber[T]) Mirror() []Field {
	box := a.box.Load()
	if box == nil {
		return nil
	}
	if r, ok := box.subscriber.(Reflectable); ok {
		return r.Mirror()
	}
	return []Field{{Label: "subscriber", Value: box.subscriber}}
}

// release drops the reference to the wrapped subscriber.
// It reports whether this call was the one that dropped it.
func (a *AnySubscriber[T]) release() bool {
	return a.box.Swap(nil) != nil
}
