package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-memory Store used by tests and the offline chat mode.
// It mirrors object-storage listing semantics, including non-recursive
// delimited listings.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemStore builds a store preloaded with the given objects.
func NewMemStore(objects map[string][]byte) *MemStore {
	copied := make(map[string][]byte, len(objects))
	for name, data := range objects {
		copied[name] = data
	}

	return &MemStore{objects: copied}
}

// Put stores or replaces one object.
func (s *MemStore) Put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
}

// List returns names matching the query prefix in lexical order. With a
// delimiter set, names nested past the delimiter are rolled up and omitted,
// as an object store's non-recursive listing would.
func (s *MemStore) List(_ context.Context, query Query) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.objects {
		if !strings.HasPrefix(name, query.Prefix) {
			continue
		}
		if query.Delimiter != "" {
			rest := strings.TrimPrefix(name, query.Prefix)
			if strings.Contains(rest, query.Delimiter) {
				continue
			}
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// Download returns one object's contents.
func (s *MemStore) Download(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %q does not exist", name)
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}
