package diff

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sentinels for values that have no JSON literal.
const (
	Undefined   = "undefined"
	NotANumber  = "NaN"
	PosInfinity = "Infinity"
	NegInfinity = "-Infinity"
	Circular    = "[Circular]"
)

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeObject
	nodeArray
)

// node is the canonical tree a value is reduced to before printing.
type node struct {
	kind   nodeKind
	text   string
	fields []field
	items  []*node
}

type field struct {
	key string
	val *node
}

func (n *node) lookup(key string) (*node, bool) {
	for _, f := range n.fields {
		if f.key == key {
			return f.val, true
		}
	}
	return nil, false
}

// Stringify renders v as canonical, two-space indented JSON-like text. Map
// keys are sorted, struct fields keep declaration order (honoring json tags),
// strings are NFC-normalized, and values without a JSON literal print as
// sentinels.
func Stringify(v any) string {
	var b strings.Builder
	write(&b, build(reflect.ValueOf(v), nil), 0)
	return b.String()
}

// Reorder stringifies actual with its keys reordered to follow expected, so
// that line diffs of the two texts line up. Keys only present in actual
// follow the shared ones.
func Reorder(actual, expected any) (string, string) {
	a := build(reflect.ValueOf(actual), nil)
	e := build(reflect.ValueOf(expected), nil)

	var ab, eb strings.Builder
	write(&ab, reorder(a, e), 0)
	write(&eb, e, 0)
	return ab.String(), eb.String()
}

func reorder(actual, expected *node) *node {
	if actual == nil || expected == nil || actual.kind != expected.kind {
		return actual
	}
	switch actual.kind {
	case nodeArray:
		out := &node{kind: nodeArray, items: make([]*node, len(actual.items))}
		for i, item := range actual.items {
			if i < len(expected.items) {
				out.items[i] = reorder(item, expected.items[i])
			} else {
				out.items[i] = item
			}
		}
		return out
	case nodeObject:
		out := &node{kind: nodeObject}
		taken := make(map[string]bool, len(actual.fields))
		for _, f := range expected.fields {
			if v, ok := actual.lookup(f.key); ok {
				out.fields = append(out.fields, field{key: f.key, val: reorder(v, f.val)})
				taken[f.key] = true
			}
		}
		for _, f := range actual.fields {
			if !taken[f.key] {
				out.fields = append(out.fields, f)
			}
		}
		return out
	default:
		return actual
	}
}

type ancestor struct {
	ptr uintptr
	typ reflect.Type
}

func build(v reflect.Value, path []ancestor) *node {
	if !v.IsValid() {
		return literal(Undefined)
	}

	if lit, ok := special(v); ok {
		return literal(lit)
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return literal("null")
		}
		self := ancestor{ptr: v.Pointer(), typ: v.Type()}
		for _, a := range path {
			if a == self {
				return literal(Circular)
			}
		}
		path = append(path, self)
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return literal("null")
		}
		return build(v.Elem(), path)
	case reflect.Pointer:
		return build(v.Elem(), path)
	case reflect.Slice, reflect.Array:
		n := &node{kind: nodeArray, items: make([]*node, v.Len())}
		for i := range n.items {
			n.items[i] = build(v.Index(i), path)
		}
		return n
	case reflect.Map:
		n := &node{kind: nodeObject}
		keys := v.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = keyName(k)
		}
		order := make([]int, len(keys))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return names[order[i]] < names[order[j]] })
		for _, i := range order {
			n.fields = append(n.fields, field{key: names[i], val: build(v.MapIndex(keys[i]), path)})
		}
		return n
	case reflect.Struct:
		n := &node{kind: nodeObject}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := sf.Name
			if tag, ok := sf.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			n.fields = append(n.fields, field{key: name, val: build(v.Field(i), path)})
		}
		return n
	default:
		return literal(scalarLiteral(v))
	}
}

// special handles values whose natural rendering is not their structure.
func special(v reflect.Value) (string, bool) {
	if !v.CanInterface() {
		return "", false
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "", false
		}
	case reflect.Struct:
	default:
		return "", false
	}
	switch x := v.Interface().(type) {
	case error:
		return "Error(" + quote(x.Error()) + ")", true
	case fmt.Stringer:
		if v.Kind() == reflect.Struct && !hasExported(v.Type()) {
			return quote(x.String()), true
		}
	}
	return "", false
}

func hasExported(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func scalarLiteral(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(v.Float())
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128)
	case reflect.String:
		return quote(v.String())
	case reflect.Func:
		if v.IsNil() {
			return "null"
		}
		return "[Function]"
	case reflect.Chan:
		if v.IsNil() {
			return "null"
		}
		return "[Channel]"
	default:
		return "[" + v.Type().String() + "]"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return NotANumber
	case math.IsInf(f, 1):
		return PosInfinity
	case math.IsInf(f, -1):
		return NegInfinity
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func keyName(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return norm.NFC.String(k.String())
	}
	if k.Kind() == reflect.Interface && !k.IsNil() {
		return keyName(k.Elem())
	}
	if k.CanInterface() {
		return norm.NFC.String(fmt.Sprint(k.Interface()))
	}
	return scalarLiteral(k)
}

func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func literal(text string) *node {
	return &node{kind: nodeLiteral, text: text}
}

func write(b *strings.Builder, n *node, depth int) {
	indent := strings.Repeat("  ", depth+1)
	closing := strings.Repeat("  ", depth)
	switch n.kind {
	case nodeArray:
		if len(n.items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range n.items {
			b.WriteString(indent)
			write(b, item, depth+1)
			if i < len(n.items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(closing)
		b.WriteByte(']')
	case nodeObject:
		if len(n.fields) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, f := range n.fields {
			b.WriteString(indent)
			b.WriteString(quote(f.key))
			b.WriteString(": ")
			write(b, f.val, depth+1)
			if i < len(n.fields)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(closing)
		b.WriteByte('}')
	default:
		b.WriteString(n.text)
	}
}
