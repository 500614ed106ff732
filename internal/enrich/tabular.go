package enrich

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/repliq/repliq/internal/polyval"
	"github.com/repliq/repliq/internal/timeutil"
)

// Tabular configures the enricher for a tabular (TDS) source channel.
type Tabular struct {
	Channel      string
	ModelName    string
	Action       string
	TargetStores []string
}

// Enrich converts a raw tabular source record into the canonical envelope.
// _id is a fresh random UUID; _uid copies the source's own "_uid" if
// present; start_time is parsed from the source's "start_time" string. If
// the source carries a "forType" field, it overrides modelName - the
// original system's practice of letting a per-row type tag retarget the
// record's model, left unresolved as to whether it should also affect the
// sibling "model" field (see DESIGN.md).
func (e Tabular) Enrich(source polyval.Value) (polyval.Value, error) {
	rawStart := source.Get(FieldStartTime).AsString()
	ms, err := timeutil.FromUTC(rawStart)
	if err != nil {
		return polyval.Value{}, fmt.Errorf("enrich/tabular: parsing start_time %q: %w", rawStart, err)
	}

	env := newEnvelope(uuid.NewString(), sourceUID(source), e.Action, e.Channel, e.ModelName, polyval.TimestampMS(ms), source)

	if forType, ok := source.Lookup("forType"); ok {
		env.Set(FieldModelName, forType)
	}

	if len(e.TargetStores) > 0 {
		items := make([]polyval.Value, len(e.TargetStores))
		for i, s := range e.TargetStores {
			items[i] = polyval.String(s)
		}
		env.Set(FieldTargetStores, polyval.Sequence(items))
	}

	return env, nil
}

// EnrichBatch applies Enrich to every record, returning the envelopes in a
// new slice; batch itself is not modified.
func (e Tabular) EnrichBatch(batch []polyval.Value) ([]polyval.Value, error) {
	out := make([]polyval.Value, len(batch))
	for i, rec := range batch {
		enriched, err := e.Enrich(rec)
		if err != nil {
			return nil, err
		}
		out[i] = enriched
	}
	return out, nil
}
