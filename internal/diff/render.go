package diff

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/roach88/entail/internal/style"
)

// Pattern is anything that can test a string, such as *regexp.Regexp.
type Pattern interface {
	MatchString(s string) bool
}

// Renderer turns an actual/expected pair into a human-readable diff.
type Renderer struct {
	palette style.Palette
	dmp     *diffmatchpatch.DiffMatchPatch
}

// NewRenderer returns a Renderer that colors its output with p.
func NewRenderer(p style.Palette) *Renderer {
	return &Renderer{palette: p, dmp: diffmatchpatch.New()}
}

// Compare picks the rendering that suits the operands:
//   - two lists diff element by element
//   - a pattern diffs against the actual text character by character
//   - composites are canonically stringified, keys aligned, then diffed as text
//   - multi-line text diffs line by line
//   - single-line text diffs character by character with a caret row
//   - anything else prints both values side by side
func (r *Renderer) Compare(actual, expected any) string {
	if isList(actual) && isList(expected) {
		return r.Arrays(actual, expected)
	}

	if p, ok := expected.(Pattern); ok {
		return r.Chars(textOf(actual), PatternString(p))
	}

	compA, compE := isComposite(actual), isComposite(expected)
	switch {
	case compA && compE:
		a, e := Reorder(actual, expected)
		actual, expected = a, e
	case compA:
		actual = Stringify(actual)
	case compE:
		expected = Stringify(expected)
	}

	sa, isStrA := asString(actual)
	se, isStrE := asString(expected)
	if (isStrA && strings.Contains(sa, "\n")) || (isStrE && strings.Contains(se, "\n")) {
		return r.Lines(textOf(actual), textOf(expected))
	}
	if isStrA && isStrE {
		return r.Chars(sa, se)
	}
	return r.Direct(actual, expected)
}

// Arrays diffs two lists element by element. Each element is stringified;
// composite elements span several lines.
func (r *Renderer) Arrays(actual, expected any) string {
	var b strings.Builder
	b.WriteString(r.log("··", "["))
	for _, blk := range r.blocks(elements(actual), elements(expected)) {
		sym := symbol(blk.op)
		r.writeCaption(&b, blk.op)
		for j, text := range blk.items {
			obj := strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")
			lines := strings.Split(text, "\n")
			for k, line := range lines {
				s := "  " + line
				if !obj {
					s += ","
				}
				if obj && k == len(lines)-1 && j+1 < len(blk.items) {
					s += ","
				}
				b.WriteString(r.log(sym, s))
			}
		}
	}
	b.WriteString(r.log("··", "]"))
	return b.String()
}

// Lines diffs two texts line by line. Changed blocks are captioned and every
// line is numbered against the expected text.
func (r *Renderer) Lines(actual, expected string) string {
	rowsE := splitRows(expected)
	width := len(fmt.Sprint(len(rowsE)))
	num := 1

	var b strings.Builder
	for _, blk := range r.blocks(splitRows(actual), rowsE) {
		r.writeCaption(&b, blk.op)
		for i, row := range blk.items {
			b.WriteString(r.palette.Dim(fmt.Sprintf("L%0*d ", width, num+i)))
			b.WriteString(r.log(symbol(blk.op), row))
		}
		if blk.op != diffmatchpatch.DiffDelete {
			num += len(blk.items)
		}
	}
	return b.String()
}

func splitRows(text string) []string {
	rows := strings.Split(text, "\n")
	for i, row := range rows {
		rows[i] = strings.TrimSuffix(row, "\r")
	}
	return rows
}

// Chars diffs two single-line texts character by character and marks the
// differing columns with a caret row.
func (r *Renderer) Chars(actual, expected string) string {
	diffs := r.dmp.DiffMain(actual, expected, false)
	a, e := []rune(actual), []rune(expected)
	pa, pe := r.pretty(actual), r.pretty(expected)
	la, le := len(a), len(e)

	if la != le && len(diffs) > 1 && diffs[0].Type == diffmatchpatch.DiffDelete {
		shift := runeCount(diffs[0].Text) - runeCount(diffs[1].Text)
		switch {
		case shift > 0:
			pad := strings.Repeat(" ", shift)
			e = append([]rune(pad), e...)
			pe = pad + pe
			le += shift
		case shift < 0:
			pad := strings.Repeat(" ", -shift)
			a = append([]rune(pad), a...)
			pa = pad + pa
			la -= shift
		}
	}

	out := r.direct(pa, pe, la, le, "", "")

	var caret strings.Builder
	caret.WriteString("  ")
	if la == le {
		for i := 0; i < la; i++ {
			if a[i] == e[i] {
				caret.WriteByte(' ')
			} else {
				caret.WriteByte('^')
			}
		}
	} else {
		counts := make([]int, len(diffs))
		for i, d := range diffs {
			counts[i] = runeCount(d.Text)
		}
		for i, d := range diffs {
			mark := " "
			if d.Type != diffmatchpatch.DiffEqual {
				mark = "^"
			}
			caret.WriteString(strings.Repeat(mark, max(counts[i], 0)))
			if i+1 < len(diffs) && d.Type != diffmatchpatch.DiffEqual &&
				diffs[i+1].Type != diffmatchpatch.DiffEqual && diffs[i+1].Type != d.Type {
				counts[i+1] -= counts[i]
			}
		}
	}
	return out + r.palette.Red(caret.String())
}

// Direct prints both values on their own line. When their types differ each
// line is tagged with its type.
func (r *Renderer) Direct(actual, expected any) string {
	ta, te := typeName(actual), typeName(expected)
	if ta == te {
		ta, te = "", ""
	}
	sa, se := scalarText(actual), scalarText(expected)
	return r.direct(sa, se, utf8.RuneCountInString(sa), utf8.RuneCountInString(se), ta, te)
}

func (r *Renderer) direct(actual, expected string, la, le int, ta, te string) string {
	gutter := 4
	width := max(la, le)
	if ta != "" || te != "" {
		gutter = 2
		da, de := gutter+width-la, gutter+width-le
		actual += strings.Repeat(" ", da) + r.palette.Dim("["+ta+"]")
		expected += strings.Repeat(" ", de) + r.palette.Dim("["+te+"]")
		la += da + utf8.RuneCountInString(ta) + 2
		le += de + utf8.RuneCountInString(te) + 2
		width = max(la, le)
	}

	var b strings.Builder
	b.WriteString(r.palette.Green("++" + expected + strings.Repeat(" ", gutter+width-le) + r.palette.Title("(Expected)")))
	b.WriteByte('\n')
	b.WriteString(r.palette.Red("--" + actual + strings.Repeat(" ", gutter+width-la) + r.palette.Title("(Actual)")))
	b.WriteByte('\n')
	return b.String()
}

func (r *Renderer) writeCaption(b *strings.Builder, op diffmatchpatch.Operation) {
	switch op {
	case diffmatchpatch.DiffInsert:
		b.WriteString(r.palette.Caption("Expected:", color.FgGreen))
		b.WriteByte('\n')
	case diffmatchpatch.DiffDelete:
		b.WriteString(r.palette.Caption("Actual:", color.FgRed))
		b.WriteByte('\n')
	}
}

func (r *Renderer) log(sym, text string) string {
	line := sym + r.pretty(text)
	switch sym {
	case "--":
		line = r.palette.Red(line)
	case "++":
		line = r.palette.Green(line)
	default:
		line = r.palette.Gray(line)
	}
	return line + "\n"
}

// pretty makes whitespace visible when colors are on.
func (r *Renderer) pretty(text string) string {
	if !r.palette.Enabled() {
		return text
	}
	return visibleSpace.Replace(text)
}

var visibleSpace = strings.NewReplacer("\r\n", "↵", "\n", "↵", " ", "·", "\t", "→")

func symbol(op diffmatchpatch.Operation) string {
	switch op {
	case diffmatchpatch.DiffInsert:
		return "++"
	case diffmatchpatch.DiffDelete:
		return "--"
	default:
		return "··"
	}
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isComposite(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if _, ok := special(rv); ok {
			return false
		}
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func elements(v any) []string {
	rv := reflect.ValueOf(v)
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = Stringify(rv.Index(i).Interface())
	}
	return out
}

func asString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// textOf coerces a value to text for text diffs; falsy values become empty.
func textOf(v any) string {
	if s, ok := asString(v); ok {
		return s
	}
	if !Truthy(v) {
		return ""
	}
	return fmt.Sprint(v)
}

func scalarText(v any) string {
	if v == nil {
		return Undefined
	}
	if s, ok := asString(v); ok {
		return s
	}
	if isNil(v) {
		return "null"
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatFloat(f)
		}
	}
	return fmt.Sprint(v)
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// PatternString renders a pattern for messages; regexps print as /source/.
func PatternString(p Pattern) string {
	switch x := p.(type) {
	case *regexp.Regexp:
		return "/" + x.String() + "/"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(p)
	}
}
