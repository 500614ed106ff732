// Package dedup implements the dedup filter (C4): it fingerprints a batch's
// records, asks the destination which fingerprints it already holds, and
// drops records that are true duplicates (same fingerprint AND identical
// canonical source), tolerating fingerprint collisions by keeping anything
// whose source text differs.
package dedup

import (
	"context"
	"fmt"

	"github.com/repliq/repliq/internal/polyval"
)

// DescriptorAttribute is the envelope field the filter writes the
// fingerprint into, kept for downstream persistence and later dedup
// rounds.
const DescriptorAttribute = "descriptor"

// SourceAttribute is the envelope field whose canonical form is
// fingerprinted and compared.
const SourceAttribute = "source"

// Loader queries the destination for previously stored records whose
// descriptor attribute matches one of the given fingerprints, invoking
// onRecord for each match found. It is supplied by the sink adapter (Mongo
// or Elastic in the reference system) and is the only I/O the filter
// performs.
type Loader func(ctx context.Context, descriptorAttribute string, descriptors []int32, onRecord func(polyval.Value)) error

// Filter mutates batch in place, injecting DescriptorAttribute into every
// record, then returns the subset that is not already present at the
// destination. An empty batch is a no-op. If the destination holds none of
// the submitted fingerprints, Filter short-circuits and returns batch
// unmodified (aside from the injected descriptors).
func Filter(ctx context.Context, batch []polyval.Value, load Loader) ([]polyval.Value, error) {
	if len(batch) == 0 {
		return batch, nil
	}

	descriptors := make([]int32, len(batch))
	for i := range batch {
		source := batch[i].Get(SourceAttribute)
		descriptor := polyval.Fingerprint(source)
		batch[i].Set(DescriptorAttribute, polyval.Int32(descriptor))
		descriptors[i] = descriptor
	}

	storedDescriptors := map[int32]struct{}{}
	storedSources := map[string]struct{}{}

	err := load(ctx, DescriptorAttribute, descriptors, func(stored polyval.Value) {
		storedDescriptors[stored.Get(DescriptorAttribute).AsInt32()] = struct{}{}
		storedSources[polyval.CanonicalString(stored.Get(SourceAttribute))] = struct{}{}
	})
	if err != nil {
		return nil, fmt.Errorf("dedup: querying destination for fingerprints: %w", err)
	}

	if len(storedDescriptors) == 0 {
		return batch, nil
	}

	kept := make([]polyval.Value, 0, len(batch))
	for _, rec := range batch {
		descriptor := rec.Get(DescriptorAttribute).AsInt32()
		source := polyval.CanonicalString(rec.Get(SourceAttribute))

		_, descriptorStored := storedDescriptors[descriptor]
		_, sourceStored := storedSources[source]

		if !descriptorStored || !sourceStored {
			kept = append(kept, rec)
		}
	}

	return kept, nil
}
