package orchestrate

import (
	"context"
	"fmt"

	"github.com/repliq/repliq/internal/polyval"
)

// Pipeline is the enrich -> dedup -> save(doc) -> save(search) chain a
// batch passes through before the cursor advances. It is supplied by the
// caller so C6/C7/C8 stay agnostic of which source/sink pair they're
// moving data between.
type Pipeline func(ctx context.Context, batch []polyval.Value) error

// Bulk runs the bulk orchestrator (C6): load the whole delta since the
// last checkpoint in one pass, then save and checkpoint once. The loader
// must produce non-decreasing times; Bulk tracks the maximum time observed
// and persists exactly that value, never a partial one, so a run that
// fails mid-load leaves the prior checkpoint untouched.
func Bulk(ctx context.Context, load SourceLoader, pipeline Pipeline, cursor CursorIO, timeOf TimeOf) error {
	start, err := cursor.LoadStartTime(ctx)
	if err != nil {
		return fmt.Errorf("orchestrate/bulk: loading start time: %w", err)
	}

	var batch []polyval.Value
	maxTime := start
	var loadErr error

	err = load(ctx, start, func(rec polyval.Value) {
		if loadErr != nil {
			return
		}
		t := timeOf(rec)
		if t > maxTime {
			maxTime = t
		}
		batch = append(batch, rec)
	})
	if err != nil {
		return fmt.Errorf("orchestrate/bulk: loading data: %w", err)
	}
	if loadErr != nil {
		return loadErr
	}

	if len(batch) == 0 {
		return nil
	}

	if err := pipeline(ctx, batch); err != nil {
		return fmt.Errorf("orchestrate/bulk: saving batch: %w", err)
	}
	if err := cursor.SaveStartTime(ctx, maxTime); err != nil {
		return fmt.Errorf("orchestrate/bulk: checkpointing start time: %w", err)
	}

	return nil
}
