// Package timeutil holds the small set of time/format conversions the
// enrichers and adapters need. The system's design deliberately treats
// source/sink time formats as adapter concerns (see package-level contracts
// in internal/orchestrate); this package is the concrete, minimal helper
// those adapters and enrichers share rather than a reusable component in
// its own right.
package timeutil

import "time"

// UTCLayout is the format used to render a cursor for SQL interpolation:
// "YYYY-MM-DDTHH:MM:SS". A tabular source's start_time column is parsed
// with tabularSourceLayout instead.
const UTCLayout = "2006-01-02T15:04:05"

// tabularSourceLayout is the legacy "YYYY-MM-DD HH:MM:SS" shape emitted by
// the tabular source's start_time column.
const tabularSourceLayout = "2006-01-02 15:04:05"

// FromUTC parses a tabular source timestamp string into milliseconds since
// the epoch, treating it as UTC.
func FromUTC(s string) (int64, error) {
	t, err := time.Parse(tabularSourceLayout, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// ToUTC renders ms as "YYYY-MM-DDTHH:MM:SS", the layout used to interpolate
// a cursor into the tabular source's query.
func ToUTC(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(UTCLayout)
}

// NowMS returns the current wall-clock time in milliseconds since the
// epoch, used by the directory enricher which has no native start_time of
// its own.
func NowMS() int64 {
	return time.Now().UTC().UnixMilli()
}

// directoryTimeLayout is the directory service's generalized-time
// attribute format: "YYYYMMDDHHMMSS.0Z".
const directoryTimeLayout = "20060102150405.0Z"

// FromDirectoryTime parses a directory generalized-time string
// ("YYYYMMDDHHMMSS.0Z") into milliseconds since the epoch.
func FromDirectoryTime(s string) (int64, error) {
	t, err := time.Parse(directoryTimeLayout, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
