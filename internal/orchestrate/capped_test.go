package orchestrate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repliq/repliq/internal/polyval"
)

func idOfField(v polyval.Value) string { return v.Get("id").AsString() }

func recID(id string, ms int64) polyval.Value {
	m := polyval.NewMap()
	m.Set("id", polyval.String(id))
	m.Set("t", polyval.TimestampMS(ms))
	return m
}

type memCappedCursor struct {
	mu                       sync.Mutex
	cappedID                 string
	cappedTime               int64
	storeTime                int64
	cappedSaves, storeSaves  int
}

func newMemCappedCursor(startID string, startTime int64) *CappedCursorIO {
	m := &memCappedCursor{cappedID: startID, cappedTime: startTime, storeTime: startTime}
	return &CappedCursorIO{
		LoadCappedStartID:   func(context.Context) (string, error) { m.mu.Lock(); defer m.mu.Unlock(); return m.cappedID, nil },
		LoadCappedStartTime: func(context.Context) (int64, error) { m.mu.Lock(); defer m.mu.Unlock(); return m.cappedTime, nil },
		LoadStoreStartTime:  func(context.Context) (int64, error) { m.mu.Lock(); defer m.mu.Unlock(); return m.storeTime, nil },
		SaveCappedCursor: func(_ context.Context, id string, t int64) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.cappedID, m.cappedTime = id, t
			m.cappedSaves++
			return nil
		},
		SaveStoreCursor: func(_ context.Context, id string, t int64) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.storeTime = t
			m.storeSaves++
			return nil
		},
	}
}

func TestCappedNoOverlapNeverRunsBackfill(t *testing.T) {
	cursor := newMemCappedCursor("X", 1000)
	storeLoadCalled := false

	loadCapped := func(_ context.Context, startID string, onRecord func(polyval.Value)) error {
		assert.Equal(t, "X", startID)
		onRecord(recID("X", 1000))
		onRecord(recID("X+1", 2000))
		onRecord(recID("X+2", 3000))
		return nil
	}
	loadStore := func(context.Context, int64, func(polyval.Value)) error {
		storeLoadCalled = true
		return nil
	}

	var mu sync.Mutex
	var cappedSaved []string
	pipeline := func(_ context.Context, batch []polyval.Value) error {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range batch {
			cappedSaved = append(cappedSaved, idOfField(r))
		}
		return nil
	}
	storePipeline := func(context.Context, []polyval.Value) error { return nil }

	err := Capped(context.Background(), "test-topic", loadCapped, loadStore, pipeline, storePipeline, *cursor, timeOfMS, idOfField)
	require.NoError(t, err)
	assert.False(t, storeLoadCalled, "backfill must never run when the tail already covers the cursor")
	assert.Equal(t, []string{"X", "X+1", "X+2"}, cappedSaved)
}

func TestCappedOverlapRunsBackfillExactlyOnce(t *testing.T) {
	cursor := newMemCappedCursor("X", 1000)
	var loadStoreCalls int
	var mu sync.Mutex

	loadCapped := func(_ context.Context, _ string, onRecord func(polyval.Value)) error {
		// the ring has rotated: the tail no longer contains id "X"
		onRecord(recID("Y", 5000))
		onRecord(recID("Y+1", 6000))
		return nil
	}
	loadStore := func(_ context.Context, startTime int64, onRecord func(polyval.Value)) error {
		mu.Lock()
		loadStoreCalls++
		mu.Unlock()
		assert.Equal(t, int64(1000), startTime)
		onRecord(recID("backfill-1", 2000))
		onRecord(recID("backfill-2", 3000))
		return nil
	}

	var cappedSaved, storeSaved []string
	pipeline := func(_ context.Context, batch []polyval.Value) error {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range batch {
			cappedSaved = append(cappedSaved, idOfField(r))
		}
		return nil
	}
	storePipeline := func(_ context.Context, batch []polyval.Value) error {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range batch {
			storeSaved = append(storeSaved, idOfField(r))
		}
		return nil
	}

	err := Capped(context.Background(), "test-topic", loadCapped, loadStore, pipeline, storePipeline, *cursor, timeOfMS, idOfField)
	require.NoError(t, err)
	assert.Equal(t, 1, loadStoreCalls)
	assert.ElementsMatch(t, []string{"Y", "Y+1"}, cappedSaved)
	assert.ElementsMatch(t, []string{"backfill-1", "backfill-2"}, storeSaved)
}
