package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flux/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("sub", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "sub", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestError(t *testing.T) {
	t.Parallel()
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
}

func TestStreamAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(7), logger.Ticket(7).Value.Uint64())
	assert.Equal(t, "subscriber_id", logger.SubscriberID("abc").Key)
	assert.True(t, logger.SubscriberID("").Equal(slog.Attr{}))
	assert.Equal(t, "max(3)", logger.Demand("max(3)").Value.String())
	assert.Equal(t, "finished", logger.Completion("finished").Value.String())
	assert.Equal(t, "prices", logger.Channel("prices").Value.String())
	assert.True(t, logger.Channel("").Equal(slog.Attr{}))
}

func TestMetadataAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "component", logger.Component("subject").Key)
	assert.Equal(t, int64(3), logger.Count("subscribers", 3).Value.Int64())
	assert.Equal(t, int64(2), logger.RetryCount(2).Value.Int64())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
	assert.True(t, logger.Addr("").Equal(slog.Attr{}))
	assert.Equal(t, ":8080", logger.Addr(":8080").Value.String())
}
