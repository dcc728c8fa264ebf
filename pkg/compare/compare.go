package compare

import (
	"math"
	"reflect"
)

// Comparer reports whether a and b are equal under s. A true result
// suppresses notification.
type Comparer func(a, b any, s Strictness) bool

// Equal applies the policy named by s. Custom tags are resolved through
// custom; without one they behave like None.
func Equal(a, b any, s Strictness, custom Comparer) bool {
	switch s {
	case None:
		return false
	case Strict:
		return Identical(a, b)
	case IsEqual:
		return deepEqual(a, b, false, false)
	case IsEqualRemoveUndefined:
		return deepEqual(a, b, true, false)
	case IsEqualRemoveUndefinedSorted:
		return deepEqual(a, b, true, true)
	}
	if custom != nil {
		return custom(a, b, s)
	}
	return false
}

// Identical reports reference identity. Maps, pointers, channels and funcs
// are identical when they point at the same memory, slices when they share
// the backing array and length. Comparable scalars fall back to ==.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	}
	if !va.Comparable() {
		return false
	}
	return a == b
}

// ShallowClone copies the top level of maps and slices so the result is not
// Identical to v. Other values are returned unchanged.
func ShallowClone(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = value
		}
		return out
	case []any:
		out := make([]any, len(typed))
		copy(out, typed)
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return v
}

func deepEqual(a, b any, dropNil, unordered bool) bool {
	return equalValues(reflect.ValueOf(a), reflect.ValueOf(b), dropNil, unordered)
}

func equalValues(a, b reflect.Value, dropNil, unordered bool) bool {
	a, b = unwrap(a), unwrap(b)
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && (fa == fb || (math.IsNaN(fa) && math.IsNaN(fb)))
	}
	switch a.Kind() {
	case reflect.Map:
		if b.Kind() != reflect.Map {
			return false
		}
		return equalMaps(a, b, dropNil, unordered)
	case reflect.Slice, reflect.Array:
		if b.Kind() != reflect.Slice && b.Kind() != reflect.Array {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		if unordered {
			return equalUnordered(a, b, dropNil)
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValues(a.Index(i), b.Index(i), dropNil, unordered) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

func equalMaps(a, b reflect.Value, dropNil, unordered bool) bool {
	count := func(m reflect.Value) int {
		if !dropNil {
			return m.Len()
		}
		n := 0
		iter := m.MapRange()
		for iter.Next() {
			if unwrap(iter.Value()).IsValid() {
				n++
			}
		}
		return n
	}
	if count(a) != count(b) {
		return false
	}
	iter := a.MapRange()
	for iter.Next() {
		value := iter.Value()
		if dropNil && !unwrap(value).IsValid() {
			continue
		}
		if !iter.Key().Type().AssignableTo(b.Type().Key()) {
			return false
		}
		other := b.MapIndex(iter.Key())
		if !other.IsValid() {
			return false
		}
		if !equalValues(value, other, dropNil, unordered) {
			return false
		}
	}
	return true
}

// equalUnordered matches every element of a with a distinct equal element of b.
func equalUnordered(a, b reflect.Value, dropNil bool) bool {
	used := make([]bool, b.Len())
	for i := 0; i < a.Len(); i++ {
		found := false
		for j := 0; j < b.Len(); j++ {
			if used[j] {
				continue
			}
			if equalValues(a.Index(i), b.Index(j), dropNil, true) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// unwrap resolves interface values and nil references to their dynamic value,
// returning the zero Value for nil.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	if v.IsValid() {
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice:
			if v.IsNil() {
				return reflect.Value{}
			}
		}
	}
	return v
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
