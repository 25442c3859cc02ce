package tmpl

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Stringify renders a value as template output.
//
// Nil, and a nil pointer of any type, renders as empty text. Numbers with no fractional part render without
// a decimal point, NaN renders as "NaN" and infinities as "Infinity" or
// "-Infinity". Slices render their elements joined with ",".
func Stringify(v any) string {
	if isNilPointer(v) {
		return ""
	}

	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = Stringify(e)
		}

		return strings.Join(parts, ",")
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)

	case reflect.Float32, reflect.Float64:
		return formatNumber(rv.Float())

	case reflect.String:
		return rv.String()

	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Stringify(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")

	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}

		return Stringify(rv.Elem().Interface())
	}

	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if abs := math.Abs(f); abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toNumber coerces v to a float64. Nil, false and the empty string are zero;
// strings are parsed after trimming and yield NaN when malformed.
func toNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case bool:
		if val {
			return 1
		}

		return 0
	case string:
		return parseNumber(val)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())

	case reflect.Float32, reflect.Float64:
		return rv.Float()

	case reflect.String:
		return parseNumber(rv.String())

	case reflect.Pointer:
		if rv.IsNil() {
			return 0
		}

		return toNumber(rv.Elem().Interface())
	}

	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// isNumeric reports whether v holds a Go numeric type.
func isNumeric(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isString(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.String
}

// arith applies a binary operator. Addition concatenates when either operand
// is a string; every other case is numeric.
func arith(op byte, l, r any) any {
	switch op {
	case '+':
		if isString(l) || isString(r) {
			return Stringify(l) + Stringify(r)
		}

		return toNumber(l) + toNumber(r)
	case '-':
		return toNumber(l) - toNumber(r)
	case '*':
		return toNumber(l) * toNumber(r)
	case '/':
		return toNumber(l) / toNumber(r)
	}

	return nil
}

// looseEqual compares two values the way the case function expects: numbers
// compare numerically against numeric strings, everything else compares by
// its rendered text.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if isNumeric(a) || isNumeric(b) {
		x, y := toNumber(a), toNumber(b)

		return !math.IsNaN(x) && x == y
	}

	return Stringify(a) == Stringify(b)
}

// isBlank reports whether v counts as unset for default and empty: nil, the
// empty string, or the string "null".
func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "null"
	default:
		return false
	}
}

// LookupPath resolves a dotted path against data. Each segment selects a map
// key, a struct field (case-insensitive), or a slice index. It reports false
// when any segment is missing.
func LookupPath(data any, path ...string) (any, bool) {
	cur := data

	for _, seg := range path {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return cur, true
}

func step(in any, name string) (any, bool) {
	switch m := in.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := m[name]

		return v, ok
	case map[string]string:
		v, ok := m[name]

		return v, ok
	case []any:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(m) {
			return nil, false
		}

		return m[i], true
	}

	rv := reflect.ValueOf(in)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}

		return step(rv.Elem().Interface(), name)

	case reflect.Struct:
		fv := rv.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
		if !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}

		return fv.Interface(), true

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}

		return mv.Interface(), true

	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}

		return rv.Index(i).Interface(), true
	}

	return nil, false
}

// Elements returns the items of a slice or array value, or nil when v is
// not a list.
func Elements(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}

	rv := reflect.ValueOf(v)

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items
}

// isNilPointer reports whether v holds a nil pointer, map, slice, func,
// channel or interface. Methods such as String on those may dereference it.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func,
		reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	}

	return false
}
