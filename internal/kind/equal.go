package kind

import "slices"

// Equal reports whether a and b are structurally equal.
//
// Objects compare by key set and field kinds, Records compare their tables as
// sets, and Either compares alternatives in order.
func Equal(a, b Kind) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Elem, y.Elem)
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok {
			return false
		}
		xs, ys := slices.Clone(x.Tables), slices.Clone(y.Tables)
		slices.Sort(xs)
		slices.Sort(ys)
		return slices.Equal(slices.Compact(xs), slices.Compact(ys))
	case Option:
		y, ok := b.(Option)
		return ok && Equal(x.Inner, y.Inner)
	case Either:
		y, ok := b.(Either)
		if !ok || len(x.Alts) != len(y.Alts) {
			return false
		}
		for i := range x.Alts {
			if !Equal(x.Alts[i], y.Alts[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
