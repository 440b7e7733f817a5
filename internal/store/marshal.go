package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalPath stores a group path as a JSON array. HTML escaping is off so
// names read back byte for byte in the sqlite shell.
func marshalPath(path []string) (string, error) {
	if path == nil {
		path = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(path); err != nil {
		return "", fmt.Errorf("marshal path: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalPath(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var path []string
	if err := json.Unmarshal([]byte(data), &path); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	return path, nil
}
