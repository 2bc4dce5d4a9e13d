package websocket_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flux/core/stream"
	fluxws "github.com/dmitrymomot/flux/integration/websocket"
)

type tick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// signalPublisher reports every subscriber after it has been attached.
type signalPublisher[T any] struct {
	stream.Publisher[T]
	subscribed chan stream.Subscriber[T]
}

func newSignalPublisher[T any](p stream.Publisher[T]) *signalPublisher[T] {
	return &signalPublisher[T]{Publisher: p, subscribed: make(chan stream.Subscriber[T], 1)}
}

func (p *signalPublisher[T]) Subscribe(s stream.Subscriber[T]) {
	p.Publisher.Subscribe(s)
	p.subscribed <- s
}

// manualPublisher hands every subscriber the same recording subscription.
type manualPublisher[T any] struct {
	sub        *recordingSubscription
	subscribed chan stream.Subscriber[T]
}

func newManualPublisher[T any]() *manualPublisher[T] {
	return &manualPublisher[T]{
		sub:        &recordingSubscription{},
		subscribed: make(chan stream.Subscriber[T], 1),
	}
}

func (p *manualPublisher[T]) Subscribe(s stream.Subscriber[T]) {
	s.ReceiveSubscription(p.sub)
	p.subscribed <- s
}

type recordingSubscription struct {
	mu       sync.Mutex
	requests []stream.Demand
	cancels  int
}

func (s *recordingSubscription) Request(d stream.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, d)
}

func (s *recordingSubscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *recordingSubscription) snapshot() ([]stream.Demand, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stream.Demand(nil), s.requests...), s.cancels
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitSubscribed[T any](t *testing.T, ch <-chan stream.Subscriber[T]) stream.Subscriber[T] {
	t.Helper()

	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber was not attached")
		return nil
	}
}

func readClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	return closeErr
}

func TestHandler_Streaming(t *testing.T) {
	t.Parallel()

	t.Run("values_are_written_as_json_frames", func(t *testing.T) {
		t.Parallel()

		subject := stream.NewPassthroughSubject[tick]()
		pub := newSignalPublisher[tick](subject)

		server := httptest.NewServer(fluxws.Handler[tick](pub))
		defer server.Close()

		conn := dial(t, server)
		waitSubscribed(t, pub.subscribed)

		subject.Send(tick{Symbol: "BTC", Price: 64000})
		subject.Send(tick{Symbol: "ETH", Price: 3100})

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		msgType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, msgType)
		assert.JSONEq(t, `{"symbol":"BTC","price":64000}`, string(data))

		var got tick
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, tick{Symbol: "ETH", Price: 3100}, got)
	})

	t.Run("finished_stream_sends_normal_closure", func(t *testing.T) {
		t.Parallel()

		subject := stream.NewPassthroughSubject[tick]()
		pub := newSignalPublisher[tick](subject)

		server := httptest.NewServer(fluxws.Handler[tick](pub))
		defer server.Close()

		conn := dial(t, server)
		waitSubscribed(t, pub.subscribed)

		subject.SendCompletion(stream.Finished)

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	})

	t.Run("failed_stream_sends_internal_error_with_reason", func(t *testing.T) {
		t.Parallel()

		subject := stream.NewPassthroughSubject[tick]()
		pub := newSignalPublisher[tick](subject)

		var (
			mu      sync.Mutex
			errSeen error
		)
		disconnected := make(chan struct{})
		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithErrorHandler(func(_ context.Context, err error) {
				mu.Lock()
				errSeen = err
				mu.Unlock()
			}),
			fluxws.WithOnDisconnect(func(context.Context, *websocket.Conn) {
				close(disconnected)
			}),
		))
		defer server.Close()

		conn := dial(t, server)
		waitSubscribed(t, pub.subscribed)

		failure := errors.New("upstream exploded")
		subject.SendCompletion(stream.Failure(failure))

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
		assert.Equal(t, "upstream exploded", closeErr.Text)

		select {
		case <-disconnected:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not return")
		}
		mu.Lock()
		assert.ErrorIs(t, errSeen, failure)
		mu.Unlock()
	})

	t.Run("long_failure_reason_is_truncated", func(t *testing.T) {
		t.Parallel()

		subject := stream.NewPassthroughSubject[tick]()
		pub := newSignalPublisher[tick](subject)

		server := httptest.NewServer(fluxws.Handler[tick](pub))
		defer server.Close()

		conn := dial(t, server)
		waitSubscribed(t, pub.subscribed)

		subject.SendCompletion(stream.Failure(errors.New(strings.Repeat("x", 500))))

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
		assert.Len(t, closeErr.Text, 123)
	})

	t.Run("completed_subject_closes_new_connections", func(t *testing.T) {
		t.Parallel()

		subject := stream.NewPassthroughSubject[tick]()
		subject.SendCompletion(stream.Finished)

		server := httptest.NewServer(fluxws.Handler[tick](subject))
		defer server.Close()

		conn := dial(t, server)

		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	})
}

func TestHandler_Demand(t *testing.T) {
	t.Parallel()

	t.Run("requests_window_and_replenishes_per_write", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[tick]()

		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithSubscriberOptions(fluxws.WithWindow(3)),
		))
		defer server.Close()

		conn := dial(t, server)
		sub := waitSubscribed(t, pub.subscribed)

		requests, _ := pub.sub.snapshot()
		assert.Equal(t, []stream.Demand{stream.Max(3)}, requests)

		assert.Equal(t, stream.Max(1), sub.ReceiveValue(tick{Symbol: "SOL", Price: 150}))

		var got tick
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "SOL", got.Symbol)
	})

	t.Run("client_disconnect_cancels_subscription", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[tick]()
		disconnected := make(chan struct{})

		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithOnDisconnect(func(context.Context, *websocket.Conn) {
				close(disconnected)
			}),
		))
		defer server.Close()

		conn := dial(t, server)
		waitSubscribed(t, pub.subscribed)

		require.NoError(t, conn.Close())

		select {
		case <-disconnected:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not notice the disconnect")
		}

		_, cancels := pub.sub.snapshot()
		assert.Equal(t, 1, cancels)
	})

	t.Run("unencodable_value_is_skipped", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[any]()

		server := httptest.NewServer(fluxws.Handler[any](pub))
		defer server.Close()

		conn := dial(t, server)
		sub := waitSubscribed(t, pub.subscribed)

		assert.Equal(t, stream.Max(1), sub.ReceiveValue(make(chan int)))
		assert.Equal(t, stream.Max(1), sub.ReceiveValue("after"))

		var got string
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "after", got)

		_, cancels := pub.sub.snapshot()
		assert.Zero(t, cancels)
	})
}

func TestHandler_Upgrade(t *testing.T) {
	t.Parallel()

	t.Run("rejected_origin_reports_error", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[tick]()
		errCh := make(chan error, 1)

		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithOriginCheck(func(r *http.Request) bool { return false }),
			fluxws.WithErrorHandler(func(_ context.Context, err error) { errCh <- err }),
		))
		defer server.Close()

		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()

		select {
		case err := <-errCh:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("error handler was not called")
		}
		assert.Empty(t, pub.subscribed)
	})

	t.Run("on_connect_error_skips_subscription", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[tick]()
		errCh := make(chan error, 1)
		refused := errors.New("not allowed")

		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithOnConnect(func(context.Context, *websocket.Conn) error { return refused }),
			fluxws.WithErrorHandler(func(_ context.Context, err error) { errCh <- err }),
		))
		defer server.Close()

		conn := dial(t, server)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		require.Error(t, err)

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, refused)
		case <-time.After(2 * time.Second):
			t.Fatal("error handler was not called")
		}
		assert.Empty(t, pub.subscribed)
	})

	t.Run("subprotocol_is_negotiated", func(t *testing.T) {
		t.Parallel()

		pub := newManualPublisher[tick]()

		server := httptest.NewServer(fluxws.Handler[tick](pub,
			fluxws.WithSubprotocols("flux.v1"),
			fluxws.WithReadBuffer(2048),
			fluxws.WithWriteBuffer(2048),
			fluxws.WithHandshakeTimeout(time.Second),
		))
		defer server.Close()

		dialer := websocket.Dialer{Subprotocols: []string{"flux.v1"}}
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
		conn, _, err := dialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, "flux.v1", conn.Subprotocol())
	})
}
