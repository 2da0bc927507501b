// Package scan keeps cluster-scan cursor state between host calls.
package scan

import (
	"sync"

	"github.com/google/uuid"

	glidebridge "github.com/wippyai/glide-bridge"
)

// FinishedCursor is the cursor id reported once a scan has covered every
// node. It is never stored.
const FinishedCursor = glidebridge.FinishedScanCursor

// Store maps cursor ids to scan state.
type Store struct {
	cursors map[string]any
	mu      sync.Mutex
}

// New returns an empty store.
func New() *Store {
	return &Store{cursors: make(map[string]any)}
}

// Insert stores state under a fresh cursor id.
func (s *Store) Insert(state any) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.cursors[id] = state
	s.mu.Unlock()
	return id
}

// Get returns the state for id.
func (s *Store) Get(id string) (any, bool) {
	if id == FinishedCursor {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.cursors[id]
	return state, ok
}

// Remove releases id. Unknown ids and the finished sentinel are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.cursors, id)
	s.mu.Unlock()
}

// Len returns the number of live cursors.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}
