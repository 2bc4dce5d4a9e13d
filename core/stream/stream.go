package stream

import "github.com/google/uuid"

// Subscription lets a subscriber request more values or stop receiving them.
type Subscription interface {
	// Request adds to the outstanding demand. Demand must be positive.
	Request(d Demand)

	// Cancel stops delivery. Calling it more than once is a no-op.
	Cancel()
}

// Cancellable is anything that can be cancelled.
type Cancellable interface {
	Cancel()
}

// Subscriber receives a subscription, then values up to its demand,
// then at most one completion.
type Subscriber[T any] interface {
	ReceiveSubscription(s Subscription)

	// ReceiveValue handles one value and returns the additional demand
	// the subscriber wants on top of what is still outstanding.
	ReceiveValue(v T) Demand

	ReceiveCompletion(c Completion)
}

// Publisher produces values for any number of subscribers.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subject is a publisher that values and completion can be pushed into.
// It also accepts subscriptions from upstream producers feeding it.
type Subject[T any] interface {
	Publisher[T]

	Send(v T)
	SendCompletion(c Completion)
	SendSubscription(s Subscription)
}

// Identifiable is implemented by subscribers that carry their own identity.
type Identifiable interface {
	ID() uuid.UUID
}

// Field is one labelled child in a structural description.
type Field struct {
	Label string
	Value any
}

// Reflectable is implemented by values that expose their structure for debugging.
type Reflectable interface {
	Mirror() []Field
}

// EmptySubscription is an already-cancelled subscription.
// Requests and cancels on it do nothing.
var EmptySubscription Subscription = emptySubscription{}

type emptySubscription struct{}

func (emptySubscription) Request(Demand) {}
func (emptySubscription) Cancel()        {}
func (emptySubscription) String() string { return "Empty" }
