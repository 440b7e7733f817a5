package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out run ids "<prefix>-0001", "<prefix>-0002", ...
//
// The same test with a fresh SequentialIDs always records the same ids,
// which keeps stored runs comparable across test runs.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequentialIDs creates a generator. An empty prefix becomes "run".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%04d", g.prefix, g.next)
}
