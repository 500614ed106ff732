// Package orchestrate implements the three reusable copy orchestrators
// (C6 bulk, C7 streaming, C8 capped-stream) that define this system's
// correctness and liveness properties, plus the first-error latch they
// share.
package orchestrate

import (
	"context"
	"time"

	"github.com/repliq/repliq/internal/polyval"
)

// SourceLoader reads every source record whose time is >= startTime,
// invoking onRecord for each in the order the source produces them. It
// returns once exhausted, or on error.
type SourceLoader func(ctx context.Context, startTime int64, onRecord func(polyval.Value)) error

// CappedSourceLoader tails a capped (ring-buffer) stream starting at the
// record with id startID when it is still present (that record included),
// invoking onRecord for each record in arrival order. It
// does not return until the tail is closed or ctx is canceled.
type CappedSourceLoader func(ctx context.Context, startID string, onRecord func(polyval.Value)) error

// Saver persists a batch of enriched, deduplicated records to a
// destination (the canonical document store, or the search index).
type Saver func(ctx context.Context, batch []polyval.Value) error

// TimeOf extracts a record's logical time in milliseconds since the epoch.
type TimeOf func(polyval.Value) int64

// IDOf extracts a capped-stream record's id.
type IDOf func(polyval.Value) string

// CursorIO persists and recovers the (time, id) checkpoint pair for one
// topic. Implementations back onto the cursor store (internal/cursorstore).
// Bulk and Stream use only the time functions; the capped-stream
// orchestrator takes its cursors through CappedCursorIO instead.
type CursorIO struct {
	LoadStartTime func(ctx context.Context) (int64, error)
	SaveStartTime func(ctx context.Context, t int64) error
	LoadStartID   func(ctx context.Context) (string, error)
	SaveStartID   func(ctx context.Context, id string) error
}

// pollInterval is the sleep duration used at every cancellation and
// backpressure poll point in C7 and C8.
const pollInterval = time.Millisecond
