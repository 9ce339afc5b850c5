package state

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store holds one user's State. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	state       State
	nextID      int
	subscribers map[int]func(Snapshot)
}

// NewStore creates a Store with an empty state.
func NewStore() *Store {
	return &Store{
		state:       State{}.clone(),
		subscribers: make(map[int]func(Snapshot)),
	}
}

// Dispatch applies action and returns the resulting snapshot.
// Subscribers are called synchronously, outside the lock, in no particular order.
func (s *Store) Dispatch(action Action) Snapshot {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	snap := SnapshotOf(s.state)
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return snap
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SnapshotOf(s.state)
}

// Subscribe registers fn to be called after every Dispatch. The returned cancel func is idempotent.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// DefaultCapacity is the number of user stores a Registry keeps when no capacity is set.
const DefaultCapacity = 10_000

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapacity bounds the number of stores kept. Past it the least recently used store is dropped.
// A non-positive n keeps DefaultCapacity.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithObserver subscribes fn to every store the registry creates.
func WithObserver(fn func(userID string, snap Snapshot)) RegistryOption {
	return func(r *Registry) { r.observer = fn }
}

type registryEntry struct {
	store  *Store
	cancel func()
}

// Registry lazily creates one Store per user and keeps at most its capacity of them.
type Registry struct {
	mu       sync.Mutex
	stores   *lru.Cache[string, registryEntry]
	capacity int
	observer func(userID string, snap Snapshot)
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(r)
	}
	stores, err := lru.NewWithEvict(r.capacity, func(_ string, e registryEntry) { e.cancel() })
	if err != nil {
		panic(fmt.Sprintf("failed to create state registry: %v", err))
	}
	r.stores = stores
	return r
}

// For returns the Store for userID, creating it on first use.
// A user whose store was evicted starts again from an empty state.
func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.stores.Get(userID); ok {
		return e.store
	}
	e := registryEntry{store: NewStore(), cancel: func() {}}
	if r.observer != nil {
		observer := r.observer
		e.cancel = e.store.Subscribe(func(snap Snapshot) { observer(userID, snap) })
	}
	r.stores.Add(userID, e)
	return e.store
}

// Len returns the number of users with a store.
func (r *Registry) Len() int {
	return r.stores.Len()
}
