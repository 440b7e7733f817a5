package diff

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Identical reports whether a and b are the same value: same dynamic type
// and either the same reference (slices, maps, pointers, funcs, chans) or
// the same scalar value. NaN is identical to itself; +0 and -0 are not.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	return identical(va, vb)
}

func identical(va, vb reflect.Value) bool {
	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return math.IsNaN(fa) && math.IsNaN(fb)
		}
		return fa == fb && math.Signbit(fa) == math.Signbit(fb)
	case reflect.Complex64, reflect.Complex128:
		return va.Complex() == vb.Complex()
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		// Zero-capacity slices share one base address.
		if va.Cap() == 0 || vb.Cap() == 0 {
			return false
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len() && va.Cap() == vb.Cap()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if va.Elem().Type() != vb.Elem().Type() {
			return false
		}
		return identical(va.Elem(), vb.Elem())
	case reflect.Array:
		for i := 0; i < va.Len(); i++ {
			if !identical(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !identical(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	default:
		return scalarEqual(va, vb)
	}
}

// scalarEqual compares bool, integer and string kinds of the same type.
func scalarEqual(va, vb reflect.Value) bool {
	switch va.Kind() {
	case reflect.Bool:
		return va.Bool() == vb.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return va.Int() == vb.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return va.Uint() == vb.Uint()
	case reflect.String:
		return va.String() == vb.String()
	default:
		return false
	}
}

// LooselyEqual reports coercive equality. Numbers of any Go kind compare by
// value, numeric strings and booleans coerce to numbers, and nil values of
// any nilable kind are equal to each other. Composite values are only equal
// when Identical. NaN is equal to NaN.
func LooselyEqual(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}
	na, nb := isNil(a), isNil(b)
	if na || nb {
		return na && nb
	}
	if Identical(a, b) {
		return true
	}
	sa, oka := toScalar(a)
	sb, okb := toScalar(b)
	if !oka || !okb {
		return false
	}
	return looseScalars(sa, sb)
}

// scalar is a coercion-ready view of a Go value.
type scalar struct {
	kind  scalarKind
	num   float64
	text  string
	exact bool // num holds an integer that fits without rounding
	i     int64
	u     uint64
	sign  int // -1 for negative integers held in i, +1 for u
}

type scalarKind int

const (
	scalarNumber scalarKind = iota + 1
	scalarString
	scalarBool
)

func toScalar(v any) (scalar, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		n := 0.0
		if rv.Bool() {
			n = 1
		}
		return scalar{kind: scalarBool, num: n, exact: true, i: int64(n), sign: -1}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar{kind: scalarNumber, num: float64(rv.Int()), exact: true, i: rv.Int(), sign: -1}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return scalar{kind: scalarNumber, num: float64(rv.Uint()), exact: true, u: rv.Uint(), sign: 1}, true
	case reflect.Float32, reflect.Float64:
		return scalar{kind: scalarNumber, num: rv.Float()}, true
	case reflect.String:
		return scalar{kind: scalarString, text: rv.String()}, true
	default:
		return scalar{}, false
	}
}

func looseScalars(a, b scalar) bool {
	if a.kind == scalarString && b.kind == scalarString {
		return a.text == b.text
	}
	if a.kind == scalarBool {
		a.kind = scalarNumber
	}
	if b.kind == scalarBool {
		b.kind = scalarNumber
	}
	if a.kind == scalarString {
		a = scalar{kind: scalarNumber, num: stringToNumber(a.text)}
	}
	if b.kind == scalarString {
		b = scalar{kind: scalarNumber, num: stringToNumber(b.text)}
	}
	if a.exact && b.exact {
		return exactEqual(a, b)
	}
	return a.num == b.num
}

func exactEqual(a, b scalar) bool {
	switch {
	case a.sign < 0 && b.sign < 0:
		return a.i == b.i
	case a.sign > 0 && b.sign > 0:
		return a.u == b.u
	case a.sign < 0:
		return a.i >= 0 && uint64(a.i) == b.u
	default:
		return b.i >= 0 && uint64(b.i) == a.u
	}
}

// stringToNumber converts text the way a numeric comparison would: blank
// text is zero, unparsable text is NaN.
func stringToNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	switch text {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil && !strings.ContainsAny(text, "nNiI") {
		return n
	}
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(n)
	}
	return math.NaN()
}

// DeepEqual reports structural equality. Maps compare without regard to key
// order, structs field by field, pointers by their targets. A pair of
// references already under comparison on the current path is not descended
// again, which makes self-referential values safe. Dynamic types must match
// and NaN equals NaN.
func DeepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return deepEqual(reflect.ValueOf(a), reflect.ValueOf(b), make(map[visit]struct{}))
}

type visit struct {
	a, b uintptr
	typ  reflect.Type
}

func deepEqual(va, vb reflect.Value, path map[visit]struct{}) bool {
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		if va.Pointer() == vb.Pointer() && (va.Kind() != reflect.Slice || va.Len() == vb.Len()) {
			return true
		}
		key := visit{a: va.Pointer(), b: vb.Pointer(), typ: va.Type()}
		if _, onPath := path[key]; onPath {
			return true
		}
		path[key] = struct{}{}
		defer delete(path, key)
	}

	switch va.Kind() {
	case reflect.Pointer:
		return deepEqual(va.Elem(), vb.Elem(), path)
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return deepEqual(va.Elem(), vb.Elem(), path)
	case reflect.Slice, reflect.Array:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !deepEqual(va.Index(i), vb.Index(i), path) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !deepEqual(iter.Value(), other, path) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !deepEqual(va.Field(i), vb.Field(i), path) {
				return false
			}
		}
		return true
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb
	case reflect.Complex64, reflect.Complex128:
		return va.Complex() == vb.Complex()
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		return scalarEqual(va, vb)
	}
}

// Truthy reports whether v counts as true in a boolean check: false, zero
// numbers, NaN, empty strings and nil references are falsy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	default:
		return true
	}
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		return math.IsNaN(rv.Float())
	}
	return false
}

// isNil reports untyped nil and nil values of nilable kinds.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
