package stream_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/flux/core/stream"
)

func TestSink(t *testing.T) {
	t.Parallel()

	t.Run("requests unlimited by default", func(t *testing.T) {
		t.Parallel()

		var (
			mu     sync.Mutex
			values []string
			done   []stream.Completion
		)
		s := stream.NewPassthroughSubject[string]()
		sink := stream.Subscribe(s, func(v string) {
			mu.Lock()
			values = append(values, v)
			mu.Unlock()
		}, func(c stream.Completion) {
			mu.Lock()
			done = append(done, c)
			mu.Unlock()
		})

		s.Send("a")
		s.Send("b")
		s.SendCompletion(stream.Finished)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"a", "b"}, values)
		assert.Equal(t, []stream.Completion{stream.Finished}, done)
		assert.NotEqual(t, uuid.Nil, sink.ID())
		assert.Equal(t, "Sink", sink.String())
	})

	t.Run("initial demand limits delivery", func(t *testing.T) {
		t.Parallel()

		var got []int
		s := stream.NewPassthroughSubject[int]()
		s.Subscribe(newRecorder[int](stream.Unlimited))
		stream.Subscribe(s, func(v int) { got = append(got, v) }, nil,
			stream.WithInitialDemand(stream.Max(2)))

		for i := range 5 {
			s.Send(i)
		}
		assert.Equal(t, []int{0, 1}, got)
	})

	t.Run("replenish keeps a finite window open", func(t *testing.T) {
		t.Parallel()

		var got []int
		s := stream.NewPassthroughSubject[int]()
		stream.Subscribe(s, func(v int) { got = append(got, v) }, nil,
			stream.WithInitialDemand(stream.Max(1)),
			stream.WithReplenish(stream.Max(1)))

		for i := range 4 {
			s.Send(i)
		}
		assert.Equal(t, []int{0, 1, 2, 3}, got)
	})

	t.Run("cancel stops delivery and is idempotent", func(t *testing.T) {
		t.Parallel()

		var got []int
		s := stream.NewPassthroughSubject[int]()
		s.Subscribe(newRecorder[int](stream.Unlimited))
		sink := stream.Subscribe(s, func(v int) { got = append(got, v) }, nil)

		s.Send(1)
		sink.Cancel()
		sink.Cancel()
		s.Send(2)
		assert.Equal(t, []int{1}, got)
	})

	t.Run("second subscription is cancelled", func(t *testing.T) {
		t.Parallel()

		sink := stream.NewSink[int](nil, nil)
		first, second := &countingSubscription{}, &countingSubscription{}
		sink.ReceiveSubscription(first)
		sink.ReceiveSubscription(second)

		assert.Equal(t, []stream.Demand{stream.Unlimited}, first.Demands())
		assert.Zero(t, first.cancels.Load())
		assert.Equal(t, int32(1), second.cancels.Load())
		assert.Zero(t, second.requests.Load())
	})

	t.Run("late subscription receives cached completion", func(t *testing.T) {
		t.Parallel()

		var done []stream.Completion
		s := stream.NewPassthroughSubject[int]()
		s.SendCompletion(stream.Finished)
		stream.Subscribe(s, nil, func(c stream.Completion) { done = append(done, c) })

		assert.Equal(t, []stream.Completion{stream.Finished}, done)
	})
}
