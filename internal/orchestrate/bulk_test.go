package orchestrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repliq/repliq/internal/polyval"
)

func memCursor() (*CursorIO, *int64) {
	var stored int64
	cio := &CursorIO{
		LoadStartTime: func(context.Context) (int64, error) { return stored, nil },
		SaveStartTime: func(_ context.Context, t int64) error { stored = t; return nil },
	}
	return cio, &stored
}

func timeOfMS(v polyval.Value) int64 { return v.Get("t").AsTimestampMS() }

func rec(ms int64) polyval.Value {
	m := polyval.NewMap()
	m.Set("t", polyval.TimestampMS(ms))
	return m
}

func TestBulkAdvancesCursorToMaxTime(t *testing.T) {
	cio, stored := memCursor()
	var saved []polyval.Value

	load := func(_ context.Context, start int64, onRecord func(polyval.Value)) error {
		onRecord(rec(1000))
		onRecord(rec(2000))
		onRecord(rec(3000))
		return nil
	}
	pipeline := func(_ context.Context, batch []polyval.Value) error {
		saved = append(saved, batch...)
		return nil
	}

	err := Bulk(context.Background(), load, pipeline, *cio, timeOfMS)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), *stored)
	assert.Len(t, saved, 3)
}

func TestBulkEmptyDeltaDoesNotCheckpoint(t *testing.T) {
	cio, stored := memCursor()
	*stored = 500

	load := func(context.Context, int64, func(polyval.Value)) error { return nil }
	saveCalled := false
	pipeline := func(context.Context, []polyval.Value) error { saveCalled = true; return nil }

	err := Bulk(context.Background(), load, pipeline, *cio, timeOfMS)
	require.NoError(t, err)
	assert.False(t, saveCalled)
	assert.Equal(t, int64(500), *stored)
}

func TestBulkFailedSaveLeavesCursorUntouched(t *testing.T) {
	cio, stored := memCursor()
	*stored = 500

	load := func(_ context.Context, _ int64, onRecord func(polyval.Value)) error {
		onRecord(rec(1000))
		return nil
	}
	pipeline := func(context.Context, []polyval.Value) error { return assert.AnError }

	err := Bulk(context.Background(), load, pipeline, *cio, timeOfMS)
	require.Error(t, err)
	assert.Equal(t, int64(500), *stored)
}
