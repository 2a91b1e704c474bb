package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates run IDs "<prefix>-1", "<prefix>-2", ... for tests.
//
// Unlike a fixed ID list it never runs out, and Reset restarts the
// sequence so the same scenario can run again with identical IDs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	prefix string

	mu  sync.Mutex
	seq int64
}

// NewSequenceIDs creates a sequence starting at 1.
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next ID.
func (s *SequenceIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%d", s.prefix, s.seq)
}

// Reset restarts the sequence. The next ID ends in 1.
func (s *SequenceIDs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
