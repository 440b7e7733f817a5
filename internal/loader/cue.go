package loader

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// parseCUE evaluates a CUE file. Only regular fields are visible, in
// declaration order; hidden fields and definitions can hold shared values.
func parseCUE(file string, data []byte) (node, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(file))
	if err := v.Err(); err != nil {
		return node{}, cueError(file, err)
	}
	return fromCUE(file, v)
}

func fromCUE(file string, v cue.Value) (node, error) {
	if err := v.Err(); err != nil {
		return node{}, cueError(file, err)
	}
	pos := cuePos(file, v.Pos())

	switch v.IncompleteKind() {
	case cue.StructKind:
		out := node{kind: kindMap, pos: pos}
		iter, err := v.Fields()
		if err != nil {
			return node{}, cueError(file, err)
		}
		for iter.Next() {
			val, err := fromCUE(file, iter.Value())
			if err != nil {
				return node{}, err
			}
			out.entries = append(out.entries, entry{name: iter.Label(), val: val})
		}
		return out, nil

	case cue.ListKind:
		out := node{kind: kindList, pos: pos}
		iter, err := v.List()
		if err != nil {
			return node{}, cueError(file, err)
		}
		for iter.Next() {
			val, err := fromCUE(file, iter.Value())
			if err != nil {
				return node{}, err
			}
			out.items = append(out.items, val)
		}
		return out, nil
	}

	raw, err := cueScalar(v)
	if err != nil {
		return node{}, cueError(file, err)
	}
	return node{kind: kindScalar, raw: raw, pos: pos}, nil
}

// cueScalar matches the Go types yaml.v3 produces so that both formats
// compare the same way under strict equality.
func cueScalar(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		i, err := v.Int64()
		return int(i), err
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.BytesKind:
		b, err := v.Bytes()
		return string(b), err
	default:
		// Incomplete values such as `int` or `string | *"x"` without a
		// concrete value.
		return nil, v.Validate(cue.Concrete(true))
	}
}

func cueError(file string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Pos: Pos{File: file}, Message: err.Error(), Err: err}
	}

	first := errs[0]
	pos := Pos{File: file}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos = cuePos(file, positions[0])
	}
	return &LoadError{Pos: pos, Message: first.Error(), Err: err}
}

func cuePos(file string, p token.Pos) Pos {
	if !p.IsValid() {
		return Pos{File: file}
	}
	return Pos{File: file, Line: p.Line(), Column: p.Column()}
}
