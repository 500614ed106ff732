package polyval

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayout renders a TIMESTAMP-MS Value with no sub-second precision
// and no zone offset, per the canonical string contract: "YYYY-MM-DDTHH:MM:SS".
const timestampLayout = "2006-01-02T15:04:05"

// CanonicalString renders v deterministically: map entries are emitted in
// insertion order, sequence items in order, and scalars as
// `(<kind>:"<lexical>")`. Equality and Fingerprint are both defined over
// this rendering. Traversal uses an explicit frame stack rather than
// recursion so deeply nested documents do not overflow the host stack.
func CanonicalString(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, root Value) {
	type frame struct {
		src   Value
		i     int
		keys  []string
		first bool
	}
	var stack []*frame
	push := func(v Value) { stack = append(stack, &frame{src: v, first: true}) }
	push(root)

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		switch f.src.Kind() {
		case KindNull:
			b.WriteString(`(null:"null")`)
			stack = stack[:len(stack)-1]
		case KindBool:
			b.WriteString(`(bool:"`)
			b.WriteString(strconv.FormatBool(f.src.AsBool()))
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindInt32:
			b.WriteString(`(int32:"`)
			b.WriteString(strconv.FormatInt(int64(f.src.AsInt32()), 10))
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindInt64:
			b.WriteString(`(int64:"`)
			b.WriteString(strconv.FormatInt(f.src.AsInt64(), 10))
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindFloat64:
			b.WriteString(`(float64:"`)
			b.WriteString(strconv.FormatFloat(f.src.AsFloat64(), 'g', -1, 64))
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindString:
			b.WriteString(`(string:"`)
			b.WriteString(f.src.AsString())
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindTimestamp:
			b.WriteString(`(timestamp:"`)
			ms := f.src.AsTimestampMS()
			b.WriteString(time.UnixMilli(ms).UTC().Format(timestampLayout))
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]
		case KindOpaque:
			o := f.src.AsOpaque()
			b.WriteString(`(opaque:"`)
			b.WriteString(o.Tag)
			b.WriteString(":")
			b.WriteString(o.Data)
			b.WriteString(`")`)
			stack = stack[:len(stack)-1]

		case KindSequence:
			items := f.src.AsSequence()
			if f.first {
				b.WriteString("[")
				f.first = false
			}
			if f.i < len(items) {
				if f.i > 0 {
					b.WriteString(",")
				}
				next := items[f.i]
				f.i++
				push(next)
				continue
			}
			b.WriteString("]")
			stack = stack[:len(stack)-1]

		case KindMap:
			if f.first {
				b.WriteString("{")
				f.first = false
				f.keys = f.src.Keys()
			}
			if f.i < len(f.keys) {
				if f.i > 0 {
					b.WriteString(",")
				}
				k := f.keys[f.i]
				b.WriteString(`"`)
				b.WriteString(k)
				b.WriteString(`":`)
				f.i++
				push(f.src.Get(k))
				continue
			}
			b.WriteString("}")
			stack = stack[:len(stack)-1]

		default:
			panic("polyval: CanonicalString encountered unsupported kind")
		}
	}
}
