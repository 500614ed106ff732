package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopSucceedsOnFirstTry(t *testing.T) {
	calls := 0
	err := Loop(context.Background(), "test-topic", func(context.Context) error {
		calls++
		return nil
	}, Policy{Tolerance: RetryNThenRethrow, Pause: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLoopRetryNThenRethrow(t *testing.T) {
	calls := 0
	wantErr := errors.New("boom")
	err := Loop(context.Background(), "test-topic", func(context.Context) error {
		calls++
		return wantErr
	}, Policy{Tolerance: RetryNThenRethrow, Attempts: 3, Pause: time.Millisecond})
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestLoopRetryForeverOnAnyErrorStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Loop(context.Background(), "test-topic", func(context.Context) error {
		calls++
		if calls < 5 {
			return errors.New("transient")
		}
		return nil
	}, Policy{Tolerance: RetryForeverOnAnyError, Pause: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
}

func TestLoopRetryForeverOnTypedErrorStopsOnUnmatchedError(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	calls := 0

	err := Loop(context.Background(), "test-topic", func(context.Context) error {
		calls++
		if calls == 1 {
			return transient
		}
		return fatal
	}, Policy{
		Tolerance:    RetryForeverOnTypedError,
		Pause:        time.Millisecond,
		TypedErrorIs: IsSentinel(transient),
	})
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 2, calls)
}

func TestLoopRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Loop(ctx, "test-topic", func(context.Context) error {
		return errors.New("always fails")
	}, Policy{Tolerance: RetryForeverOnAnyError, Pause: time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
}
