// Package state holds the per-user storefront state (cart and favorites) shown in the header counters.
//
// State is changed only through actions passed to Reduce. Store wraps one State behind a mutex and
// notifies subscribers after every dispatch; Registry hands out one Store per user.
// The catalog pipeline never reads this state.
package state

import (
	"errors"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// ErrInvalidQuantity is returned when a cart action carries a non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// State is an immutable value: Reduce always returns a fresh copy.
type State struct {
	Cart      map[string]int
	Favorites map[string]struct{}
}

// CartCount is the number of items in the cart, quantities included.
func (s State) CartCount() int {
	total := 0
	for _, qty := range s.Cart {
		total += qty
	}
	return total
}

// FavoritesCount is the number of favorited products.
func (s State) FavoritesCount() int {
	return len(s.Favorites)
}

// IsFavorite reports whether productID is in the favorites.
func (s State) IsFavorite(productID string) bool {
	_, ok := s.Favorites[productID]
	return ok
}

func (s State) clone() State {
	out := State{
		Cart:      maps.Clone(s.Cart),
		Favorites: maps.Clone(s.Favorites),
	}
	if out.Cart == nil {
		out.Cart = make(map[string]int)
	}
	if out.Favorites == nil {
		out.Favorites = make(map[string]struct{})
	}
	return out
}

// Action describes a state transition.
type Action interface {
	isAction()
}

// AddToCart increases the quantity of ProductID by Quantity.
type AddToCart struct {
	ProductID string
	Quantity  int
}

// RemoveFromCart drops ProductID from the cart whatever its quantity.
type RemoveFromCart struct {
	ProductID string
}

// ClearCart empties the cart. Favorites are kept.
type ClearCart struct{}

// ToggleFavorite adds ProductID to the favorites, or removes it when already present.
type ToggleFavorite struct {
	ProductID string
}

func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (ClearCart) isAction()      {}
func (ToggleFavorite) isAction() {}

// Validate rejects actions that Reduce would ignore.
func Validate(action Action) error {
	if a, ok := action.(AddToCart); ok && a.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Reduce applies action to s and returns the new state. s is never modified.
// Invalid actions return an unchanged copy.
func Reduce(s State, action Action) State {
	next := s.clone()
	switch a := action.(type) {
	case AddToCart:
		if a.Quantity > 0 && a.ProductID != "" {
			next.Cart[a.ProductID] += a.Quantity
		}
	case RemoveFromCart:
		delete(next.Cart, a.ProductID)
	case ClearCart:
		clear(next.Cart)
	case ToggleFavorite:
		if a.ProductID == "" {
			break
		}
		if _, ok := next.Favorites[a.ProductID]; ok {
			delete(next.Favorites, a.ProductID)
		} else {
			next.Favorites[a.ProductID] = struct{}{}
		}
	}
	return next
}

// Snapshot is the serialisable view of a State.
type Snapshot struct {
	Cart           map[string]int `json:"cart"`
	Favorites      []string       `json:"favorites"`
	CartCount      int            `json:"cart_count"`
	FavoritesCount int            `json:"favorites_count"`
}

// SnapshotOf builds a Snapshot with favorites in lexical order.
func SnapshotOf(s State) Snapshot {
	cart := maps.Clone(s.Cart)
	if cart == nil {
		cart = map[string]int{}
	}
	favorites := lo.Keys(s.Favorites)
	slices.Sort(favorites)
	return Snapshot{
		Cart:           cart,
		Favorites:      favorites,
		CartCount:      s.CartCount(),
		FavoritesCount: s.FavoritesCount(),
	}
}
