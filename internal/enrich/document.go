package enrich

import (
	"github.com/google/uuid"

	"github.com/repliq/repliq/internal/polyval"
)

// Document configures the enricher for a document (Mongo) source channel.
type Document struct {
	Channel   string
	ModelName string
	Action    string
}

// Enrich converts a raw document source record into the canonical
// envelope. _id is a fresh random UUID, _uid copies the source's own
// "_uid" if present, and start_time is carried through unchanged as the
// source's own string form (the document source's start_time is already a
// sortable string and needs no reparsing).
func (e Document) Enrich(source polyval.Value) polyval.Value {
	startTime := source.Get(FieldStartTime)
	return newEnvelope(uuid.NewString(), sourceUID(source), e.Action, e.Channel, e.ModelName, startTime, source)
}

// EnrichBatch applies Enrich to every record.
func (e Document) EnrichBatch(batch []polyval.Value) []polyval.Value {
	out := make([]polyval.Value, len(batch))
	for i, rec := range batch {
		out[i] = e.Enrich(rec)
	}
	return out
}
