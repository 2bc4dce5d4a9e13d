package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/flux/core/stream"
)

// Handler streams publisher to every websocket client that connects.
//
// Each connection gets its own Subscriber. Frames sent by the client are
// read and discarded; the handler returns when the client goes away, the
// stream completes, or a write fails. The subscription is cancelled on
// return, which leaves the publisher and the other clients untouched.
//
// Example:
//
//	prices := stream.NewPassthroughSubject[Price]()
//	mux.Handle("/prices", websocket.Handler[Price](prices,
//		websocket.WithAllowAnyOrigin(),
//		websocket.WithSubscriberOptions(websocket.WithWindow(32)),
//	))
func Handler[T any](publisher stream.Publisher[T], opts ...Option) http.HandlerFunc {
	cfg := &handlerConfig{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		conn, err := cfg.upgrader.Upgrade(w, r, cfg.responseHeader)
		if err != nil {
			if cfg.onError != nil {
				cfg.onError(ctx, err)
			}
			return
		}
		defer func() {
			_ = conn.Close()
			if cfg.onDisconnect != nil {
				cfg.onDisconnect(ctx, conn)
			}
		}()

		if cfg.onConnect != nil {
			if err := cfg.onConnect(ctx, conn); err != nil {
				if cfg.onError != nil {
					cfg.onError(ctx, err)
				}
				return
			}
		}

		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		sub := NewSubscriber[T](conn, cfg.subscriberOpts...)
		publisher.Subscribe(sub)

		select {
		case <-readDone:
		case <-sub.Done():
		case <-ctx.Done():
		}
		sub.Cancel()

		_ = conn.Close()
		<-readDone

		if err := sub.Err(); err != nil && cfg.onError != nil {
			cfg.onError(ctx, err)
		}
	}
}
