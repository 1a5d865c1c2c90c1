package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates UUID-shaped ids that count up from 1:
// 00000000-0000-0000-0000-000000000001, ...000002, and so on.
//
// This enables golden comparison of anything that embeds generated ids.
//
// Thread-safety: Next is safe for concurrent use.
type SequentialIDs struct {
	mu sync.Mutex
	n  int64
}

// NewSequentialIDs creates a generator whose first id ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next id.
func (g *SequentialIDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n)
}
