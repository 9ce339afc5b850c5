package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Reduce(t *testing.T) {
	testCases := []struct {
		name              string
		actions           []Action
		expectedCart      map[string]int
		expectedFavorites []string
	}{
		{
			name:              "add accumulates quantities",
			actions:           []Action{AddToCart{ProductID: "a", Quantity: 1}, AddToCart{ProductID: "a", Quantity: 2}, AddToCart{ProductID: "b", Quantity: 1}},
			expectedCart:      map[string]int{"a": 3, "b": 1},
			expectedFavorites: []string{},
		},
		{
			name:              "non-positive quantity is ignored",
			actions:           []Action{AddToCart{ProductID: "a", Quantity: 0}, AddToCart{ProductID: "b", Quantity: -2}},
			expectedCart:      map[string]int{},
			expectedFavorites: []string{},
		},
		{
			name:              "remove drops the whole line",
			actions:           []Action{AddToCart{ProductID: "a", Quantity: 4}, RemoveFromCart{ProductID: "a"}, RemoveFromCart{ProductID: "missing"}},
			expectedCart:      map[string]int{},
			expectedFavorites: []string{},
		},
		{
			name:              "clear keeps favorites",
			actions:           []Action{AddToCart{ProductID: "a", Quantity: 1}, ToggleFavorite{ProductID: "z"}, ClearCart{}},
			expectedCart:      map[string]int{},
			expectedFavorites: []string{"z"},
		},
		{
			name:              "toggle twice removes",
			actions:           []Action{ToggleFavorite{ProductID: "b"}, ToggleFavorite{ProductID: "a"}, ToggleFavorite{ProductID: "b"}},
			expectedCart:      map[string]int{},
			expectedFavorites: []string{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := State{}
			// when
			for _, a := range tc.actions {
				s = Reduce(s, a)
			}
			// then
			snap := SnapshotOf(s)
			assert.Equal(t, tc.expectedCart, snap.Cart)
			assert.Equal(t, tc.expectedFavorites, snap.Favorites)
		})
	}
}

func Test_Reduce_DoesNotMutateInput(t *testing.T) {
	// given
	before := Reduce(State{}, AddToCart{ProductID: "a", Quantity: 1})
	// when
	after := Reduce(before, AddToCart{ProductID: "a", Quantity: 5})
	_ = Reduce(after, ToggleFavorite{ProductID: "f"})
	// then
	assert.Equal(t, 1, before.Cart["a"])
	assert.Equal(t, 6, after.Cart["a"])
	assert.Equal(t, 0, after.FavoritesCount())
}

func Test_State_Counts(t *testing.T) {
	s := State{}
	s = Reduce(s, AddToCart{ProductID: "a", Quantity: 2})
	s = Reduce(s, AddToCart{ProductID: "b", Quantity: 3})
	s = Reduce(s, ToggleFavorite{ProductID: "a"})

	assert.Equal(t, 5, s.CartCount())
	assert.Equal(t, 1, s.FavoritesCount())
	assert.True(t, s.IsFavorite("a"))
	assert.False(t, s.IsFavorite("b"))
}

func Test_Validate(t *testing.T) {
	assert.ErrorIs(t, Validate(AddToCart{ProductID: "a"}), ErrInvalidQuantity)
	assert.NoError(t, Validate(AddToCart{ProductID: "a", Quantity: 1}))
	assert.NoError(t, Validate(ClearCart{}))
}

func Test_Store_DispatchNotifiesSubscribers(t *testing.T) {
	// given
	store := NewStore()
	var got []Snapshot
	cancel := store.Subscribe(func(s Snapshot) { got = append(got, s) })

	// when
	store.Dispatch(AddToCart{ProductID: "a", Quantity: 2})
	cancel()
	cancel()
	store.Dispatch(ClearCart{})

	// then
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].CartCount)
	assert.Equal(t, 0, store.Snapshot().CartCount)
}

func Test_Store_SnapshotIsDetached(t *testing.T) {
	// given
	store := NewStore()
	snap := store.Dispatch(AddToCart{ProductID: "a", Quantity: 1})
	// when
	snap.Cart["a"] = 99
	// then
	assert.Equal(t, 1, store.Snapshot().Cart["a"])
}

func Test_Store_ConcurrentDispatch(t *testing.T) {
	// given
	store := NewStore()
	var wg sync.WaitGroup
	// when
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(AddToCart{ProductID: "a", Quantity: 1})
		}()
	}
	wg.Wait()
	// then
	assert.Equal(t, 50, store.Snapshot().CartCount)
}

func Test_Registry_ForIsPerUser(t *testing.T) {
	// given
	registry := NewRegistry()
	// when
	registry.For("alice").Dispatch(AddToCart{ProductID: "a", Quantity: 1})
	// then
	assert.Same(t, registry.For("alice"), registry.For("alice"))
	assert.Equal(t, 1, registry.For("alice").Snapshot().CartCount)
	assert.Equal(t, 0, registry.For("bob").Snapshot().CartCount)
	assert.Equal(t, 2, registry.Len())
}

func Test_Registry_EvictsLeastRecentlyUsed(t *testing.T) {
	// given
	registry := NewRegistry(WithCapacity(2))
	registry.For("alice").Dispatch(AddToCart{ProductID: "a", Quantity: 1})
	registry.For("bob").Dispatch(AddToCart{ProductID: "b", Quantity: 1})
	registry.For("alice")

	// when
	registry.For("carol")

	// then
	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, 1, registry.For("alice").Snapshot().CartCount)
	assert.Equal(t, 0, registry.For("bob").Snapshot().CartCount, "bob was least recently used")
}

func Test_Registry_NonPositiveCapacityKeepsDefault(t *testing.T) {
	registry := NewRegistry(WithCapacity(0))
	assert.Equal(t, DefaultCapacity, registry.capacity)
}

func Test_Registry_Observer(t *testing.T) {
	// given
	type change struct {
		user  string
		count int
	}
	var got []change
	registry := NewRegistry(WithCapacity(1), WithObserver(func(userID string, snap Snapshot) {
		got = append(got, change{user: userID, count: snap.CartCount})
	}))
	alice := registry.For("alice")

	// when
	alice.Dispatch(AddToCart{ProductID: "a", Quantity: 2})
	registry.For("bob").Dispatch(AddToCart{ProductID: "b", Quantity: 1})
	alice.Dispatch(ClearCart{})

	// then
	assert.Equal(t, []change{{user: "alice", count: 2}, {user: "bob", count: 1}}, got, "an evicted store is no longer observed")
}
