package enrich

import (
	"github.com/repliq/repliq/internal/polyval"
	"github.com/repliq/repliq/internal/timeutil"
)

// Directory configures the enricher for a directory (LDAP) source channel.
type Directory struct {
	Channel     string
	ModelName   string
	Action      string
	IDAttribute string
}

// Enrich converts a raw directory entry into the canonical envelope. Both
// _id and _uid are the entry's idAttribute value; start_time is wall-clock
// "now", since the directory source's own time semantics are resolved by
// TimeOf (see internal/orchestrate), not by the enricher.
func (e Directory) Enrich(source polyval.Value) polyval.Value {
	id := source.Get(e.IDAttribute).AsString()
	return newEnvelope(id, id, e.Action, e.Channel, e.ModelName, polyval.TimestampMS(timeutil.NowMS()), source)
}

// EnrichBatch applies Enrich to every record.
func (e Directory) EnrichBatch(batch []polyval.Value) []polyval.Value {
	out := make([]polyval.Value, len(batch))
	for i, rec := range batch {
		out[i] = e.Enrich(rec)
	}
	return out
}
