package polyval

// DeepCopy returns an independent copy of v. Maps and sequences are copied
// recursively, without recursing on the host call stack: a reader-style
// frame stack drives the traversal so arbitrarily deep structures (as may
// arrive from an upstream document store) cannot overflow it. Scalars are
// returned as-is since Value is immutable by convention.
func DeepCopy(v Value) Value {
	var result Value
	type frame struct {
		src      Value
		visiting bool
		i        int
		built    []Value   // for sequences
		keys     []string  // for maps
		builtM   *Value    // for maps
	}
	var stack []*frame

	push := func(v Value) {
		stack = append(stack, &frame{src: v})
	}
	push(v)

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		switch f.src.Kind() {
		case KindNull, KindBool, KindInt32, KindInt64, KindFloat64, KindString, KindTimestamp, KindOpaque:
			result = f.src
			stack = stack[:len(stack)-1]

		case KindSequence:
			items := f.src.AsSequence()
			if !f.visiting {
				f.visiting = true
				f.built = make([]Value, 0, len(items))
			} else {
				f.built = append(f.built, result)
			}
			if f.i < len(items) {
				next := items[f.i]
				f.i++
				push(next)
				continue
			}
			result = Sequence(f.built)
			stack = stack[:len(stack)-1]

		case KindMap:
			if !f.visiting {
				f.visiting = true
				f.keys = f.src.Keys()
				m := NewMap()
				f.builtM = &m
			} else {
				f.builtM.Set(f.keys[f.i-1], result)
			}
			if f.i < len(f.keys) {
				next := f.src.Get(f.keys[f.i])
				f.i++
				push(next)
				continue
			}
			result = *f.builtM
			stack = stack[:len(stack)-1]

		default:
			panic("polyval: DeepCopy encountered unsupported kind")
		}
	}

	return result
}
