// Package enrich implements the record enrichers (C5): pure transforms from
// a raw source record into the canonical envelope shape, one variant per
// source kind.
package enrich

import "github.com/repliq/repliq/internal/polyval"

// Envelope field names, shared by every variant.
const (
	FieldID           = "_id"
	FieldUID          = "_uid"
	FieldAction       = "action"
	FieldChannel      = "channel"
	FieldModelName    = "modelName"
	FieldProcessed    = "processed"
	FieldStartTime    = "start_time"
	FieldSource       = "source"
	FieldTargetStores = "targetStores"
)

// sourceUID returns the source's "_uid" field if present, else "".
func sourceUID(source polyval.Value) string {
	if v, ok := source.Lookup(FieldUID); ok {
		return v.AsString()
	}
	return ""
}

func newEnvelope(id, uid, action, channel, modelName string, startTime polyval.Value, source polyval.Value) polyval.Value {
	env := polyval.NewMap()
	env.Set(FieldID, polyval.String(id))
	env.Set(FieldUID, polyval.String(uid))
	env.Set(FieldAction, polyval.String(action))
	env.Set(FieldChannel, polyval.String(channel))
	env.Set(FieldModelName, polyval.String(modelName))
	env.Set(FieldProcessed, polyval.Int32(0))
	env.Set(FieldStartTime, startTime)
	env.Set(FieldSource, source)
	return env
}
