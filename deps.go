package ptrstore

import "reflect"

// Deps lists the values an accessor depends on. A binding re-attaches when
// its Deps stop being Equal.
type Deps []any

// Equal compares element-wise by value. Comparable values such as strings,
// numbers and pointers (and therefore store handles) use ==; maps, slices
// and other non-comparable values use reflect.DeepEqual. Functions are only
// equal when both are nil.
func (d Deps) Equal(other Deps) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if !depEqual(d[i], other[i]) {
			return false
		}
	}
	return true
}

func (d Deps) clone() Deps {
	if d == nil {
		return Deps{}
	}
	return append(Deps(nil), d...)
}

func depEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func keyed(deps Deps, parts ...any) Deps {
	out := make(Deps, 0, len(parts)+len(deps))
	out = append(out, parts...)
	return append(out, deps...)
}
