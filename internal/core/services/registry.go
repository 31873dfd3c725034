package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
	"github.com/retolabs/docqa/internal/index"
	"github.com/retolabs/docqa/internal/logger"
)

// Registry owns all process-wide per-user state: the loaded index
// handles and the session records. It pairs every storage mutation
// with the matching in-memory mutation under a per-user mutex, so the
// registry and the store always agree on existence.
//
// Lock discipline: operations for one user hold that user's mutex for
// the whole {load-or-create, mutate, persist} sequence. Clear takes
// the global write lock, excluding all per-user operations. Embedding
// and generation calls never run under either lock.
type Registry struct {
	store driven.IndexStore

	// gmu excludes Clear from all per-user operations.
	gmu sync.RWMutex

	// mu guards the maps below.
	mu       sync.Mutex
	locks    map[domain.UserID]*sync.Mutex
	indexes  map[domain.UserID]*index.Index
	sessions map[domain.UserID]*domain.Session
}

// NewRegistry creates an empty registry backed by the given store.
// The registry starts empty after a restart; indexes are repopulated
// lazily from storage on first use.
func NewRegistry(store driven.IndexStore) *Registry {
	return &Registry{
		store:    store,
		locks:    make(map[domain.UserID]*sync.Mutex),
		indexes:  make(map[domain.UserID]*index.Index),
		sessions: make(map[domain.UserID]*domain.Session),
	}
}

// lockUser acquires the mutex serializing operations for one user and
// returns it held. Lock entries are pruned when a user is removed, so
// after acquiring the mutex we check it is still the current entry; a
// waiter that slept through a prune retries on a fresh one.
func (r *Registry) lockUser(user domain.UserID) *sync.Mutex {
	for {
		r.mu.Lock()
		l, ok := r.locks[user]
		if !ok {
			l = &sync.Mutex{}
			r.locks[user] = l
		}
		r.mu.Unlock()

		l.Lock()
		r.mu.Lock()
		current := r.locks[user] == l
		r.mu.Unlock()
		if current {
			return l
		}
		l.Unlock()
	}
}

// GetOrLoad returns the registered index handle for the user, loading
// it from storage on first use. Returns domain.ErrIndexNotFound
// (wrapped) when the user has no persisted index.
func (r *Registry) GetOrLoad(ctx context.Context, user domain.UserID) (*index.Index, error) {
	r.gmu.RLock()
	defer r.gmu.RUnlock()
	l := r.lockUser(user)
	defer l.Unlock()

	r.mu.Lock()
	idx, ok := r.indexes[user]
	r.mu.Unlock()
	if ok {
		return idx, nil
	}

	idx, err := r.store.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded index for user %q (%d chunks)", user, idx.Len())

	r.mu.Lock()
	r.indexes[user] = idx
	r.mu.Unlock()
	return idx, nil
}

// Install persists the index for the user and registers the handle,
// replacing any prior entry (last-write-wins).
func (r *Registry) Install(ctx context.Context, user domain.UserID, idx *index.Index) error {
	r.gmu.RLock()
	defer r.gmu.RUnlock()
	l := r.lockUser(user)
	defer l.Unlock()

	if err := r.store.Save(ctx, user, idx); err != nil {
		return err
	}

	r.mu.Lock()
	r.indexes[user] = idx
	r.mu.Unlock()
	logger.Debug("registered index for user %q (%d chunks)", user, idx.Len())
	return nil
}

// RemoveUser deletes the user's storage location, registry entry and
// session. The in-memory entries are dropped even when storage turns
// out to be missing, so the two can never disagree; the missing
// storage is still reported as domain.ErrCacheNotFound.
func (r *Registry) RemoveUser(ctx context.Context, user domain.UserID) error {
	r.gmu.RLock()
	defer r.gmu.RUnlock()
	l := r.lockUser(user)
	defer l.Unlock()

	err := r.store.DeleteUser(ctx, user)
	if err != nil && !errors.Is(err, domain.ErrCacheNotFound) {
		return err
	}

	r.mu.Lock()
	delete(r.indexes, user)
	delete(r.sessions, user)
	// Prune the lock entry so the map does not grow with every
	// identity ever seen. Waiters on it retry via lockUser.
	delete(r.locks, user)
	r.mu.Unlock()
	return err
}

// Clear deletes the shared storage root and empties the registry and
// session store in full. Returns domain.ErrCacheNotFound (wrapped)
// when the root has already been cleared.
func (r *Registry) Clear(ctx context.Context) error {
	r.gmu.Lock()
	defer r.gmu.Unlock()

	err := r.store.DeleteAll(ctx)
	if err != nil && !errors.Is(err, domain.ErrCacheNotFound) {
		return err
	}

	r.mu.Lock()
	r.indexes = make(map[domain.UserID]*index.Index)
	r.sessions = make(map[domain.UserID]*domain.Session)
	// No per-user operation is in flight while gmu is held
	// exclusively, so the lock map can be reset wholesale.
	r.locks = make(map[domain.UserID]*sync.Mutex)
	r.mu.Unlock()
	return err
}

// RecordQuestion notes the user's most recent question, creating the
// session on first use. Asking again overwrites the previous question.
func (r *Registry) RecordQuestion(user domain.UserID, question string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	sess, ok := r.sessions[user]
	if !ok {
		sess = &domain.Session{UserID: user, CreatedAt: now}
		r.sessions[user] = sess
	}
	sess.LastQuestion = question
	sess.UpdatedAt = now
}

// Session returns the user's session record, if one exists.
func (r *Registry) Session(user domain.UserID) (*domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[user]
	if !ok {
		return nil, false
	}
	copy := *sess
	return &copy, true
}

// Registered reports whether an index handle is currently loaded for
// the user, without touching storage.
func (r *Registry) Registered(user domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.indexes[user]
	return ok
}
