// Package memory provides an in-memory IndexStore for tests.
// It mirrors the error semantics of the sqlite store, including the
// "root removed by clear-all" behaviour.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
	"github.com/retolabs/docqa/internal/index"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store keeps per-user indexes in memory.
type Store struct {
	mu         sync.Mutex
	indexes    map[domain.UserID]*index.Index
	rootExists bool
}

// NewStore creates an empty in-memory store with an existing root.
func NewStore() *Store {
	return &Store{
		indexes:    make(map[domain.UserID]*index.Index),
		rootExists: true,
	}
}

// Save replaces the user's stored index.
func (s *Store) Save(_ context.Context, user domain.UserID, idx *index.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootExists = true
	s.indexes[user] = idx
	return nil
}

// Load returns the user's stored index.
func (s *Store) Load(_ context.Context, user domain.UserID) (*index.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[user]
	if !ok {
		return nil, fmt.Errorf("%w: no index for user %q", domain.ErrIndexNotFound, user)
	}
	return idx, nil
}

// DeleteUser removes the user's stored index.
func (s *Store) DeleteUser(_ context.Context, user domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[user]; !ok {
		return fmt.Errorf("%w: no cache for user %q", domain.ErrCacheNotFound, user)
	}
	delete(s.indexes, user)
	return nil
}

// DeleteAll removes every stored index and the root itself.
func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rootExists {
		return fmt.Errorf("%w: index root does not exist", domain.ErrCacheNotFound)
	}
	s.indexes = make(map[domain.UserID]*index.Index)
	s.rootExists = false
	return nil
}
