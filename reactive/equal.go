package reactive

import (
	"math"
	"reflect"
)

// HasChanged reports whether a write of newValue over oldValue is observable.
// Two NaNs are the same value, +0 and -0 are not. Values of non-comparable types
// (slices, maps, funcs) compare by identity; any other value that cannot be
// compared with == counts as changed.
func HasChanged(oldValue, newValue any) bool {
	return !sameValue(oldValue, newValue, false)
}

// SameValueZero is the equality used by Includes: NaN equals NaN and +0 equals -0.
func SameValueZero(a, b any) bool {
	return sameValue(a, b, true)
}

// strictEquals is the equality used by IndexOf: NaN is never equal to anything.
func strictEquals(a, b any) bool {
	if f, ok := asFloat(a); ok && math.IsNaN(f) {
		return false
	}
	return sameValue(a, b, true)
}

func sameValue(a, b any, zeroEqual bool) bool {
	fa, aFloat := asFloat(a)
	fb, bFloat := asFloat(b)
	if aFloat && bFloat && reflect.TypeOf(a) == reflect.TypeOf(b) {
		switch {
		case math.IsNaN(fa) && math.IsNaN(fb):
			return true
		case fa == 0 && fb == 0:
			return zeroEqual || math.Signbit(fa) == math.Signbit(fb)
		default:
			return fa == fb
		}
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	// a struct or array type can be comparable while holding an interface
	// whose dynamic value is not; == would panic on it
	if ta.Comparable() && va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map, reflect.Func:
		return va.UnsafePointer() == vb.UnsafePointer()
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	default:
		return 0, false
	}
}
