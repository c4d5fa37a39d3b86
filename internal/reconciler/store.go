package reconciler

import (
	"sync"
)

// ResultStore keeps the latest result per rule-set for the duration of a session,
// so a later merge can join them onto the catalog. It is safe for concurrent use.
type ResultStore struct {
	mu      sync.RWMutex
	order   []string
	results map[string]*Result
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]*Result)}
}

// Put stores r under its rule-set name, replacing an earlier result in place.
func (s *ResultStore) Put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[r.Name]; !ok {
		s.order = append(s.order, r.Name)
	}
	s.results[r.Name] = r
}

// Get returns the result stored under name.
func (s *ResultStore) Get(name string) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[name]
	return r, ok
}

// Delete removes a stored result and reports whether one existed.
func (s *ResultStore) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[name]; !ok {
		return false
	}
	delete(s.results, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Names lists the stored rule-set names in first-stored order.
func (s *ResultStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Results returns the stored results in first-stored order.
func (s *ResultStore) Results() []*Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Result, len(s.order))
	for i, name := range s.order {
		out[i] = s.results[name]
	}
	return out
}

// Len returns the number of stored results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
