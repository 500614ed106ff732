package orchestrate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repliq/repliq/internal/polyval"
)

func TestStreamSavesAllRecordsInOrder(t *testing.T) {
	cio, stored := memCursor()

	load := func(_ context.Context, _ int64, onRecord func(polyval.Value)) error {
		for i := int64(0); i < 100; i++ {
			onRecord(rec((i + 1) * 1000))
		}
		return nil
	}

	var mu sync.Mutex
	var saved []int64
	pipeline := func(_ context.Context, batch []polyval.Value) error {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range batch {
			saved = append(saved, timeOfMS(r))
		}
		return nil
	}

	err := Stream(context.Background(), "test-topic", load, pipeline, *cio, timeOfMS)
	require.NoError(t, err)
	assert.Len(t, saved, 100)
	assert.Equal(t, int64(100000), *stored)
	for i := 1; i < len(saved); i++ {
		assert.LessOrEqual(t, saved[i-1], saved[i])
	}
}

func TestStreamNonMonotonicTimeFailsRun(t *testing.T) {
	cio, _ := memCursor()

	load := func(_ context.Context, _ int64, onRecord func(polyval.Value)) error {
		onRecord(rec(2000))
		onRecord(rec(1000))
		return nil
	}
	pipeline := func(context.Context, []polyval.Value) error { return nil }

	err := Stream(context.Background(), "test-topic", load, pipeline, *cio, timeOfMS)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonMonotonicTime)
}

func TestStreamLoaderFailurePropagates(t *testing.T) {
	cio, _ := memCursor()
	wantErr := errors.New("source unavailable")

	load := func(context.Context, int64, func(polyval.Value)) error { return wantErr }
	pipeline := func(context.Context, []polyval.Value) error { return nil }

	err := Stream(context.Background(), "test-topic", load, pipeline, *cio, timeOfMS)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestStreamSaverFailurePropagates(t *testing.T) {
	cio, _ := memCursor()
	wantErr := errors.New("sink unavailable")

	load := func(_ context.Context, _ int64, onRecord func(polyval.Value)) error {
		onRecord(rec(1000))
		return nil
	}
	pipeline := func(context.Context, []polyval.Value) error { return wantErr }

	err := Stream(context.Background(), "test-topic", load, pipeline, *cio, timeOfMS)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}
