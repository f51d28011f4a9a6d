package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsumer() *Consumer {
	return &Consumer{
		topic:  "test.events",
		logger: zap.NewNop(),
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxHandleRetries)
		},
	}
}

func TestHandleWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	c := newTestConsumer()
	calls := 0
	handler := func(context.Context, kafkago.Message) error {
		calls++
		if calls < 3 {
			return errors.New("database unavailable")
		}
		return nil
	}

	err := c.handleWithRetry(context.Background(), handler, kafkago.Message{Topic: c.topic})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestHandleWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	c := newTestConsumer()
	calls := 0
	failure := errors.New("database unavailable")
	handler := func(context.Context, kafkago.Message) error {
		calls++
		return failure
	}

	err := c.handleWithRetry(context.Background(), handler, kafkago.Message{Topic: c.topic})

	assert.ErrorIs(t, err, failure)
	assert.Equal(t, maxHandleRetries+1, calls)
}

func TestHandleWithRetry_StopsOnCancelledContext(t *testing.T) {
	c := newTestConsumer()
	c.newBackOff = newRetryBackOff
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	handler := func(context.Context, kafkago.Message) error {
		calls++
		cancel()
		return errors.New("database unavailable")
	}

	err := c.handleWithRetry(ctx, handler, kafkago.Message{Topic: c.topic})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewRetryBackOff_IsBounded(t *testing.T) {
	b := newRetryBackOff()

	for i := 0; i < maxHandleRetries; i++ {
		wait := b.NextBackOff()
		assert.NotEqual(t, backoff.Stop, wait)
		assert.LessOrEqual(t, wait, maxRetryInterval+maxRetryInterval/2)
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}
