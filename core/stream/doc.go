// Package stream implements a demand-driven publish/subscribe protocol with
// explicit backpressure, cancellation and one-shot completion.
//
// # Protocol
//
// A Publisher hands every Subscriber a Subscription. The subscriber asks for
// values with Subscription.Request and stops them with Subscription.Cancel.
// Values are only delivered while the subscriber has outstanding Demand;
// each delivery consumes one unit and the subscriber may return more from
// ReceiveValue. A stream ends with exactly one Completion, either Finished
// or Failure(err).
//
//	type printer struct{}
//
//	func (printer) ReceiveSubscription(s stream.Subscription) { s.Request(stream.Max(10)) }
//	func (printer) ReceiveValue(v int) stream.Demand         { fmt.Println(v); return stream.None }
//	func (printer) ReceiveCompletion(c stream.Completion)    { fmt.Println(c) }
//
// # Demand
//
// Demand is either a finite count or Unlimited. Arithmetic saturates: adding
// to Unlimited stays Unlimited, finite sums never overflow and subtraction
// never goes below zero. Requesting a non-positive demand is a programming
// error and panics with ErrInvalidDemand.
//
// # PassthroughSubject
//
// PassthroughSubject is a multicast hub. Values pushed with Send are offered
// to every attached subscriber in attach order; each subscriber accepts or
// drops the value based on its own demand, so a slow subscriber never holds
// back the others and nothing is buffered.
//
//	subject := stream.NewPassthroughSubject[int]()
//	defer subject.Close()
//
//	sink := stream.Subscribe(subject, func(v int) {
//		fmt.Println("got", v)
//	}, func(c stream.Completion) {
//		fmt.Println("done:", c)
//	})
//	defer sink.Cancel()
//
//	subject.Send(1)
//	subject.Send(2)
//	subject.SendCompletion(stream.Finished)
//
// Completion is terminal. Values sent afterwards are ignored and subscribers
// attaching afterwards immediately receive EmptySubscription followed by the
// cached completion.
//
// Upstream producers feed a subject by handing it their own subscription via
// SendSubscription. The subject requests Unlimited from every upstream the
// first time any subscriber requests values. Close cancels the upstreams.
//
// # Concurrency
//
// Send, SendCompletion, Subscribe and every Subscription method may be called
// from any goroutine. Deliveries to one subscriber are serialized and arrive
// in broadcast order. A subscriber may call back into its own subscription,
// or into the subject, from inside ReceiveValue without deadlocking.
//
// Cancelling a subscription prevents future deliveries; a delivery already
// under way is allowed to finish.
//
// # SubscriberList
//
// SubscriberList is the ticketed registry behind the subject. Tickets grow
// monotonically, so removal is a binary search, and Snapshot gives a stable
// copy for iterating without holding the owner's lock.
package stream
