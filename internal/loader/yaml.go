package loader

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// parseYAML decodes a YAML or JSON document, keeping mapping key order.
// An empty document decodes to an empty mapping.
func parseYAML(file string, data []byte) (node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return node{kind: kindMap, pos: Pos{File: file}}, nil
		}
		return node{}, &LoadError{Pos: Pos{File: file}, Message: err.Error(), Err: err}
	}
	return fromYAML(file, &doc, 0)
}

const maxAliasDepth = 64

func fromYAML(file string, n *yaml.Node, depth int) (node, error) {
	pos := Pos{File: file, Line: n.Line, Column: n.Column}
	if depth > maxAliasDepth {
		return node{}, &LoadError{Pos: pos, Message: "aliases nested too deeply"}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return node{kind: kindMap, pos: pos}, nil
		}
		return fromYAML(file, n.Content[0], depth)

	case yaml.AliasNode:
		return fromYAML(file, n.Alias, depth+1)

	case yaml.MappingNode:
		out := node{kind: kindMap, pos: pos}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return node{}, &LoadError{Pos: Pos{File: file, Line: key.Line, Column: key.Column}, Message: "mapping keys must be scalars"}
			}
			v, err := fromYAML(file, val, depth)
			if err != nil {
				return node{}, err
			}
			out.entries = append(out.entries, entry{name: key.Value, val: v})
		}
		return out, nil

	case yaml.SequenceNode:
		out := node{kind: kindList, pos: pos}
		for _, item := range n.Content {
			v, err := fromYAML(file, item, depth)
			if err != nil {
				return node{}, err
			}
			out.items = append(out.items, v)
		}
		return out, nil

	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return node{}, &LoadError{Pos: pos, Message: err.Error(), Err: err}
		}
		return node{kind: kindScalar, raw: v, pos: pos}, nil
	}
}
