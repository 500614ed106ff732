package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/repliq/repliq/internal/polyval"
	"github.com/repliq/repliq/internal/queue"
)

// CappedCursorIO persists the two independent (id, time) cursors the
// capped-stream orchestrator advances: one for the tail of the capped
// stream, one for the bounded-time-window backfill reader.
type CappedCursorIO struct {
	LoadCappedStartID   func(ctx context.Context) (string, error)
	LoadCappedStartTime func(ctx context.Context) (int64, error)
	SaveCappedCursor    func(ctx context.Context, id string, t int64) error
	LoadStoreStartTime  func(ctx context.Context) (int64, error)
	SaveStoreCursor     func(ctx context.Context, id string, t int64) error
}

// cappedShared holds the mutable state the capped and store lanes publish
// to one another; string fields are mutex-guarded since atomic.Value would
// need a wrapper type for no benefit here.
type cappedShared struct {
	mu sync.Mutex

	cappedStartID   string
	cappedStartTime int64
	storeStartID    string
	storeStartTime  int64
}

func (s *cappedShared) setCapped(id string, t int64) {
	s.mu.Lock()
	s.cappedStartID, s.cappedStartTime = id, t
	s.mu.Unlock()
}

func (s *cappedShared) getCapped() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cappedStartID, s.cappedStartTime
}

func (s *cappedShared) setStore(id string, t int64) {
	s.mu.Lock()
	s.storeStartID, s.storeStartTime = id, t
	s.mu.Unlock()
}

func (s *cappedShared) getStore() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeStartID, s.storeStartTime
}

// Capped runs the capped-stream orchestrator (C8): a tail reader of a
// capped (ring-buffer) source feeds one lane, and a bounded-time-window
// backfill reader feeds a parallel lane, activated only if the tail has
// rotated past the previously remembered cursor. The overlap handshake
// (fallbackRequested/fallbackDisabled) guarantees exactly one lane drives
// any given id range, so the union of both lanes equals the source delta
// with no record saved twice (P8). topic labels both lane queues' depth
// gauges in internal/metrics.
func Capped(
	ctx context.Context,
	topic string,
	loadCapped CappedSourceLoader,
	loadStore SourceLoader,
	cappedPipeline Pipeline,
	storePipeline Pipeline,
	cursor CappedCursorIO,
	timeOf TimeOf,
	idOf IDOf,
) error {
	cappedStartID, err := cursor.LoadCappedStartID(ctx)
	if err != nil {
		return fmt.Errorf("orchestrate/capped: loading capped start id: %w", err)
	}
	cappedStartTime, err := cursor.LoadCappedStartTime(ctx)
	if err != nil {
		return fmt.Errorf("orchestrate/capped: loading capped start time: %w", err)
	}
	storeStartTime, err := cursor.LoadStoreStartTime(ctx)
	if err != nil {
		return fmt.Errorf("orchestrate/capped: loading store start time: %w", err)
	}

	shared := &cappedShared{}
	shared.setCapped(cappedStartID, cappedStartTime)
	shared.setStore(cappedStartID, storeStartTime)

	qc := queue.New().WithLabels(topic, "capped")
	qs := queue.New().WithLabels(topic, "store")
	var latch firstLatch

	var fallbackRequested atomic.Bool
	var fallbackDisabled atomic.Bool

	doneW1 := make(chan struct{})
	doneW2 := make(chan struct{})
	doneW3 := make(chan struct{})
	doneW4 := make(chan struct{})

	closed := func(ch <-chan struct{}) bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}

	var wg sync.WaitGroup
	wg.Add(3)

	// W2 LoadStore
	go func() {
		defer wg.Done()
		defer close(doneW2)
		for !fallbackDisabled.Load() && !closed(doneW3) {
			if !fallbackRequested.Load() {
				time.Sleep(pollInterval)
				continue
			}
			fallbackDisabled.Store(true)

			_, from := shared.getStore()
			err := loadStore(ctx, from, func(rec polyval.Value) {
				for qs.Size() > queue.Max {
					if latch.IsSet() {
						return
					}
					time.Sleep(pollInterval)
				}
				if latch.IsSet() {
					return
				}
				qs.Push(rec)
			})
			latch.SetIfNil(err)
			return
		}
	}()

	// W3 SaveCapped
	go func() {
		defer wg.Done()
		defer close(doneW3)

		hasSavedMetadata := false

		for !closed(doneW1) || !qc.IsEmpty() {
			if latch.IsSet() {
				return
			}
			if qc.IsEmpty() {
				time.Sleep(pollInterval)
				continue
			}

			batch := qc.DrainAll()
			curID, curTime := shared.getCapped()

			for _, rec := range batch {
				id := idOf(rec)

				if !fallbackDisabled.Load() {
					if id == curID {
						fallbackDisabled.Store(true)
					} else {
						fallbackRequested.Store(true)
						for !fallbackDisabled.Load() && !closed(doneW2) {
							time.Sleep(pollInterval)
						}
					}
				}

				curID = id
				t := timeOf(rec)
				if t < curTime {
					latch.SetIfNil(fmt.Errorf("orchestrate/capped: %w: capped record time %d precedes cursor %d", ErrNonMonotonicTime, t, curTime))
					return
				}
				curTime = t
			}
			shared.setCapped(curID, curTime)

			if err := cappedPipeline(ctx, batch); err != nil {
				latch.SetIfNil(fmt.Errorf("orchestrate/capped: saving capped batch: %w", err))
				return
			}

			if closed(doneW4) && !latch.IsSet() {
				if err := cursor.SaveCappedCursor(ctx, curID, curTime); err != nil {
					latch.SetIfNil(fmt.Errorf("orchestrate/capped: checkpointing capped cursor: %w", err))
					return
				}
				hasSavedMetadata = true
			}
		}

		if !fallbackDisabled.Load() {
			hasSavedMetadata = true
			fallbackRequested.Store(true)
		}

		if fallbackRequested.Load() {
			for !closed(doneW4) {
				time.Sleep(pollInterval)
			}
		}

		if !hasSavedMetadata && !latch.IsSet() {
			id, t := shared.getCapped()
			if err := cursor.SaveCappedCursor(ctx, id, t); err != nil {
				latch.SetIfNil(fmt.Errorf("orchestrate/capped: checkpointing capped cursor: %w", err))
			}
		}
	}()

	// W4 SaveStore
	go func() {
		defer wg.Done()
		defer close(doneW4)

		for !closed(doneW2) || !qs.IsEmpty() {
			if latch.IsSet() {
				return
			}
			if qs.IsEmpty() {
				time.Sleep(pollInterval)
				continue
			}

			batch := qs.DrainAll()
			curID, curTime := shared.getStore()

			for _, rec := range batch {
				curID = idOf(rec)
				t := timeOf(rec)
				if t < curTime {
					latch.SetIfNil(fmt.Errorf("orchestrate/capped: %w: store record time %d precedes cursor %d", ErrNonMonotonicTime, t, curTime))
					return
				}
				curTime = t
			}
			shared.setStore(curID, curTime)

			if err := storePipeline(ctx, batch); err != nil {
				latch.SetIfNil(fmt.Errorf("orchestrate/capped: saving store batch: %w", err))
				return
			}
			if err := cursor.SaveStoreCursor(ctx, curID, curTime); err != nil {
				latch.SetIfNil(fmt.Errorf("orchestrate/capped: checkpointing store cursor: %w", err))
				return
			}
		}
	}()

	// W1 LoadCapped runs on this goroutine, acting as the main thread that
	// joins the other three.
	func() {
		defer close(doneW1)
		startID, _ := shared.getCapped()
		err := loadCapped(ctx, startID, func(rec polyval.Value) {
			if latch.IsSet() {
				return
			}
			qc.Push(rec)
		})
		latch.SetIfNil(err)
	}()

	wg.Wait()

	if latch.IsSet() {
		return latch.First()
	}
	return nil
}
