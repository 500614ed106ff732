package orchestrate

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/repliq/repliq/internal/polyval"
	"github.com/repliq/repliq/internal/queue"
)

// Stream runs the streaming orchestrator (C7): a Loader worker and a Saver
// worker cooperate over one bounded Queue. The loader polls the queue's
// size and sleeps while it's over queue.Max, bounding in-flight memory
// (P6); the saver drains in batches, enforces time-monotonicity (P1), runs
// the pipeline, and checkpoints after each successful save so a crash
// resumes from the last durably-saved batch (P2). A failure in either
// worker is recorded on a first-error latch and observed by the other at
// its next poll point (P7); Stream returns that error, and only that
// error, once both workers have unwound. topic labels the queue's depth
// gauge in internal/metrics.
func Stream(ctx context.Context, topic string, load SourceLoader, pipeline Pipeline, cursor CursorIO, timeOf TimeOf) error {
	start, err := cursor.LoadStartTime(ctx)
	if err != nil {
		return fmt.Errorf("orchestrate/stream: loading start time: %w", err)
	}

	q := queue.New().WithLabels(topic, "stream")
	var latch firstLatch
	loaderDone := make(chan struct{})

	go func() {
		defer close(loaderDone)
		err := load(ctx, start, func(rec polyval.Value) {
			for q.Size() > queue.Max {
				if latch.IsSet() {
					return
				}
				time.Sleep(pollInterval)
			}
			if latch.IsSet() {
				return
			}
			q.Push(rec)
		})
		latch.SetIfNil(err)
	}()

	saveErr := runStreamSaver(ctx, q, pipeline, cursor, timeOf, start, &latch, loaderDone)
	latch.SetIfNil(saveErr)

	<-loaderDone

	if latch.IsSet() {
		return latch.First()
	}
	return nil
}

func runStreamSaver(ctx context.Context, q *queue.Queue, pipeline Pipeline, cursor CursorIO, timeOf TimeOf, start int64, latch *firstLatch, loaderDone <-chan struct{}) error {
	cursorTime := start

	loaderFinished := func() bool {
		select {
		case <-loaderDone:
			return true
		default:
			return false
		}
	}

	for {
		if latch.IsSet() {
			return ErrAborted
		}
		if q.IsEmpty() {
			if loaderFinished() && q.IsEmpty() {
				return nil
			}
			time.Sleep(pollInterval)
			continue
		}

		batch := q.DrainAll()
		for _, rec := range batch {
			t := timeOf(rec)
			if t < cursorTime {
				return fmt.Errorf("orchestrate/stream: %w: record time %d precedes cursor %d", ErrNonMonotonicTime, t, cursorTime)
			}
			cursorTime = t
		}

		if err := pipeline(ctx, batch); err != nil {
			return fmt.Errorf("orchestrate/stream: saving batch: %w", err)
		}
		if err := cursor.SaveStartTime(ctx, cursorTime); err != nil {
			return fmt.Errorf("orchestrate/stream: checkpointing start time: %w", err)
		}
		log.WithField("count", len(batch)).WithField("cursor", cursorTime).Debug("orchestrate/stream: saved batch")
	}
}

