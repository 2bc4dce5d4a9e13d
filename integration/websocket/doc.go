// Package websocket streams values from a stream.Publisher to websocket clients.
//
// Subscriber adapts a gorilla/websocket connection into a stream.Subscriber:
// every value is written as a JSON text frame and the stream's completion
// becomes a close frame (1000 for a normal finish, 1011 carrying the failure
// text otherwise). Demand is kept to a small window, so a slow client slows
// its own delivery rather than buffering without bound.
//
// Handler wires this into net/http:
//
//	subject := stream.NewPassthroughSubject[Event]()
//	http.Handle("/events", websocket.Handler[Event](subject,
//		websocket.WithAllowAnyOrigin(),
//		websocket.WithSubscriberOptions(
//			websocket.WithWindow(32),
//			websocket.WithWriteTimeout(5*time.Second),
//		),
//	))
//
// Frames sent by clients are read and discarded. A client that disconnects
// only cancels its own subscription.
package websocket
