package lead

import (
	"context"
	"sync"

	"github.com/gforma/lead-assistant/internal/model"
)

// Store is an in-memory lead list, most recent first.
type Store struct {
	mu    sync.RWMutex
	leads []model.Lead
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Capture prepends l to the store.
func (s *Store) Capture(_ context.Context, l model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = append([]model.Lead{l}, s.leads...)
	return nil
}

// List returns a copy of the stored leads, most recent first.
func (s *Store) List() []model.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// Len returns the number of stored leads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}
