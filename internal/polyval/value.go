// Package polyval implements the self-describing record value ("polyvalue")
// that flows through the copy pipeline between source adapters, enrichers,
// the dedup filter and the sinks.
package polyval

import (
	"errors"
	"fmt"
)

// Kind identifies the underlying shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat64
	KindString
	KindTimestamp
	KindOpaque
	KindSequence
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindOpaque:
		return "opaque"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

var (
	// ErrKindMismatch is returned (as a panic value, never as an error return -
	// see As*) when an accessor is used on a Value of the wrong Kind. It is a
	// programmer error and is never retried.
	ErrKindMismatch = errors.New("polyval: kind mismatch")
	// ErrOutOfRange indicates a sequence index accessor was used out of bounds.
	ErrOutOfRange = errors.New("polyval: index out of range")
	// ErrMissingKey indicates a map key accessor was used for an absent key.
	ErrMissingKey = errors.New("polyval: missing key")
)

// Opaque carries a tagged scalar that the core does not interpret: a UUID-like
// tag naming the scalar's domain plus an opaque string payload (mirrors the
// source system's "custom" scalar, e.g. a Mongo ObjectID).
type Opaque struct {
	Tag  string
	Data string
}

// entry is one key/value pair of a Map, kept in insertion order.
type entry struct {
	key string
	val Value
}

// Value is a tagged, self-describing record value. The zero Value has
// KindNull and behaves as Null(); build every other kind with one of the
// constructors below.
type Value struct {
	kind Kind

	boolean bool
	i32     int32
	i64     int64
	f64     float64
	str     string
	opaque  Opaque
	seq     []Value
	entries []entry
	index   map[string]int // key -> position in entries, lazily built for Map
}

var (
	nullValue  = Value{kind: KindNull}
	trueValue  = Value{kind: KindBool, boolean: true}
	falseValue = Value{kind: KindBool, boolean: false}
)

// Null returns the shared null singleton.
func Null() Value { return nullValue }

// Bool returns the shared true/false singleton for v.
func Bool(v bool) Value {
	if v {
		return trueValue
	}
	return falseValue
}

func Int32(v int32) Value     { return Value{kind: KindInt32, i32: v} }
func Int64(v int64) Value     { return Value{kind: KindInt64, i64: v} }
func Float64(v float64) Value { return Value{kind: KindFloat64, f64: v} }
func String(v string) Value   { return Value{kind: KindString, str: v} }

// TimestampMS constructs a timestamp Value from milliseconds since the epoch.
func TimestampMS(ms int64) Value { return Value{kind: KindTimestamp, i64: ms} }

func OpaqueValue(tag, data string) Value {
	return Value{kind: KindOpaque, opaque: Opaque{Tag: tag, Data: data}}
}

// Sequence constructs an ordered sequence. The slice is taken ownership of;
// callers should not mutate it afterwards.
func Sequence(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, seq: items}
}

// NewMap returns an empty map value with stable insertion order.
func NewMap() Value {
	return Value{kind: KindMap, entries: []entry{}, index: map[string]int{}}
}

// MapOf builds a map value from the given keys in the order supplied.
func MapOf(keys []string, vals []Value) Value {
	m := NewMap()
	for i, k := range keys {
		m.Set(k, vals[i])
	}
	return m
}

// Kind reports the Value's tag.
func (v Value) Kind() Kind { return v.kind }

// Is reports whether v has the given Kind.
func (v Value) Is(k Kind) bool { return v.kind == k }

func (v Value) assert(k Kind) {
	if v.kind != k {
		panic(fmt.Errorf("%w: want %s, have %s", ErrKindMismatch, k, v.kind))
	}
}

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() bool {
	v.assert(KindBool)
	return v.boolean
}

func (v Value) AsInt32() int32 {
	v.assert(KindInt32)
	return v.i32
}

func (v Value) AsInt64() int64 {
	v.assert(KindInt64)
	return v.i64
}

func (v Value) AsFloat64() float64 {
	v.assert(KindFloat64)
	return v.f64
}

func (v Value) AsString() string {
	v.assert(KindString)
	return v.str
}

// AsTimestampMS returns milliseconds since the epoch.
func (v Value) AsTimestampMS() int64 {
	v.assert(KindTimestamp)
	return v.i64
}

func (v Value) AsOpaque() Opaque {
	v.assert(KindOpaque)
	return v.opaque
}

func (v Value) AsSequence() []Value {
	v.assert(KindSequence)
	return v.seq
}

// Index returns the i'th element of a sequence, panicking with
// ErrOutOfRange if i is out of bounds.
func (v Value) Index(i int) Value {
	v.assert(KindSequence)
	if i < 0 || i >= len(v.seq) {
		panic(fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, len(v.seq)))
	}
	return v.seq[i]
}

// Len reports the number of elements/entries for sequence and map kinds.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMap:
		return len(v.entries)
	default:
		panic(fmt.Errorf("%w: Len() requires sequence or map, have %s", ErrKindMismatch, v.kind))
	}
}

// Get returns the value stored under key, panicking with ErrMissingKey if
// absent.
func (v Value) Get(key string) Value {
	v.assert(KindMap)
	if i, ok := v.index[key]; ok {
		return v.entries[i].val
	}
	panic(fmt.Errorf("%w: %q", ErrMissingKey, key))
}

// Lookup returns the value stored under key and whether it was present,
// without panicking.
func (v Value) Lookup(key string) (Value, bool) {
	v.assert(KindMap)
	if i, ok := v.index[key]; ok {
		return v.entries[i].val, true
	}
	return Value{}, false
}

// Has reports whether key is present in a map.
func (v Value) Has(key string) bool {
	v.assert(KindMap)
	_, ok := v.index[key]
	return ok
}

// Keys returns the map's keys in insertion order.
func (v Value) Keys() []string {
	v.assert(KindMap)
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// Set inserts or overwrites key with val, preserving the position of an
// existing key and appending new keys at the end. Set mutates v in place -
// callers must hold the only reference to a map they intend to mutate, since
// Value is not otherwise thread-safe for concurrent writers.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindMap {
		panic(fmt.Errorf("%w: Set() requires map, have %s", ErrKindMismatch, v.kind))
	}
	if i, ok := v.index[key]; ok {
		v.entries[i].val = val
		return
	}
	v.index[key] = len(v.entries)
	v.entries = append(v.entries, entry{key: key, val: val})
}

// Delete removes key from a map, if present.
func (v *Value) Delete(key string) {
	if v.kind != KindMap {
		panic(fmt.Errorf("%w: Delete() requires map, have %s", ErrKindMismatch, v.kind))
	}
	i, ok := v.index[key]
	if !ok {
		return
	}
	v.entries = append(v.entries[:i], v.entries[i+1:]...)
	delete(v.index, key)
	for k, pos := range v.index {
		if pos > i {
			v.index[k] = pos - 1
		}
	}
}
