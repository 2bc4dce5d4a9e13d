package stream

import "sync"

// conduit binds one subscriber to a PassthroughSubject. It is the
// Subscription that subscriber holds and owns its outstanding demand.
//
// mu guards released, demand and the references; it is never held while
// subscriber code runs. deliveryMu serializes deliveries to the subscriber
// and is reentrant so the subscriber may call Request, Cancel or even the
// subject from inside ReceiveValue.
type conduit[T any] struct {
	mu         sync.Mutex
	deliveryMu reentrantMutex

	parent     *PassthroughSubject[T]
	downstream *AnySubscriber[T]
	ticket     Ticket
	released   bool
	demand     Demand

	description string
}

// newConduit registers the conduit in the parent's registry.
// The caller holds the parent's lock.
func newConduit[T any](parent *PassthroughSubject[T], downstream Subscriber[T]) *conduit[T] {
	c := &conduit[T]{
		parent:      parent,
		downstream:  NewAnySubscriber(downstream),
		description: parent.description,
	}
	c.ticket = parent.downstreams.Insert(c)
	return c
}

// Request implements Subscription.
func (c *conduit[T]) Request(d Demand) {
	d.AssertNonZero()

	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.demand = c.demand.Add(d)
	parent := c.parent
	c.mu.Unlock()

	parent.acknowledgeDownstreamDemand()
}

// Cancel implements Subscription.
func (c *conduit[T]) Cancel() {
	c.release(nil)
}

// offer delivers v if the subscriber has outstanding demand, otherwise drops it.
func (c *conduit[T]) offer(v T) {
	c.mu.Lock()
	if c.released || !c.demand.Positive() {
		c.mu.Unlock()
		return
	}
	c.demand = c.demand.Sub(Max(1))
	downstream := c.downstream
	c.mu.Unlock()

	more := c.deliver(func() Demand {
		return downstream.ReceiveValue(v)
	})
	if !more.Positive() {
		return
	}

	c.mu.Lock()
	c.demand = c.demand.Add(more)
	c.mu.Unlock()
}

// finish delivers the completion and releases the conduit.
func (c *conduit[T]) finish(completion Completion) {
	c.release(func(downstream *AnySubscriber[T]) {
		c.deliver(func() Demand {
			downstream.ReceiveCompletion(completion)
			return None
		})
	})
}

func (c *conduit[T]) deliver(fn func() Demand) Demand {
	c.deliveryMu.Lock()
	defer c.deliveryMu.Unlock()

	return fn()
}

// release runs at most once per conduit: it de-registers from the parent,
// runs body and drops the references to the parent and the subscriber.
func (c *conduit[T]) release(body func(*AnySubscriber[T])) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	parent, downstream := c.parent, c.downstream
	c.mu.Unlock()

	parent.disassociate(c.ticket)
	if body != nil {
		body(downstream)
	}

	c.mu.Lock()
	c.parent = nil
	c.downstream = nil
	c.mu.Unlock()

	downstream.release()
}

// String implements fmt.Stringer.
func (c *conduit[T]) String() string {
	return c.description
}

// Mirror implements Reflectable.
func (c *conduit[T]) Mirror() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	return []Field{
		{Label: "parent", Value: c.parent},
		{Label: "downstream", Value: c.downstream},
		{Label: "demand", Value: c.demand},
		{Label: "subject", Value: c.parent},
	}
}
