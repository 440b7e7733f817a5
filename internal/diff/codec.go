package diff

import (
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// block is a run of items sharing one diff operation.
type block struct {
	op    diffmatchpatch.Operation
	items []string
}

// codec assigns each distinct item one rune so diffmatchpatch can diff
// item sequences as text. Ids skip the surrogate range, which does not
// survive a round trip through string.
type codec struct {
	index map[string]rune
	items []string
}

const (
	surrogateMin = 0xD800
	surrogateLen = 0xE000 - surrogateMin
)

// maxItems is the number of distinct items a codec can encode.
const maxItems = unicode.MaxRune - surrogateLen

func (c *codec) encode(items []string) ([]rune, bool) {
	out := make([]rune, len(items))
	for i, s := range items {
		id, ok := c.index[s]
		if !ok {
			if len(c.items) >= maxItems {
				return nil, false
			}
			id = rune(len(c.items) + 1)
			if id >= surrogateMin {
				id += surrogateLen
			}
			c.index[s] = id
			c.items = append(c.items, s)
		}
		out[i] = id
	}
	return out, true
}

func (c *codec) decode(id rune) string {
	if id >= surrogateMin {
		id -= surrogateLen
	}
	return c.items[id-1]
}

// blocks diffs two item sequences. When there are more distinct items than
// the codec can number, the whole of actual is replaced by expected.
func (r *Renderer) blocks(actual, expected []string) []block {
	c := &codec{index: make(map[string]rune)}
	ra, okA := c.encode(actual)
	re, okE := c.encode(expected)
	if !okA || !okE {
		var out []block
		if len(actual) > 0 {
			out = append(out, block{op: diffmatchpatch.DiffDelete, items: actual})
		}
		if len(expected) > 0 {
			out = append(out, block{op: diffmatchpatch.DiffInsert, items: expected})
		}
		return out
	}

	diffs := r.dmp.DiffMainRunes(ra, re, false)
	out := make([]block, 0, len(diffs))
	for _, d := range diffs {
		ids := []rune(d.Text)
		items := make([]string, len(ids))
		for i, id := range ids {
			items[i] = c.decode(id)
		}
		out = append(out, block{op: d.Type, items: items})
	}
	return out
}
