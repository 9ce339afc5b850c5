// Package notification keeps the admin notification list: entries merged by id, newest first,
// with the read flag surviving re-delivery of the same notification.
package notification

import (
	"cmp"
	"slices"
	"time"
)

// Kinds of notifications produced from product events.
const (
	KindProductCreated = "product_created"
	KindOutOfStock     = "out_of_stock"
)

// Notification is one inbox entry, keyed by ID so repeated deliveries merge.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// Merge returns the union of existing and incoming keyed by ID.
//
// An incoming entry replaces the content of a stored entry with the same ID, but a stored entry that
// was already read stays read. When incoming repeats an ID, the last occurrence wins. The result is
// ordered by CreatedAt, newest first; entries with equal timestamps keep existing-then-incoming order.
// Neither input is modified.
func Merge(existing, incoming []Notification) []Notification {
	out := make([]Notification, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	for _, n := range existing {
		if i, ok := index[n.ID]; ok {
			out[i] = n
			continue
		}
		index[n.ID] = len(out)
		out = append(out, n)
	}
	for _, n := range incoming {
		i, ok := index[n.ID]
		if !ok {
			index[n.ID] = len(out)
			out = append(out, n)
			continue
		}
		n.Read = n.Read || out[i].Read
		out[i] = n
	}

	slices.SortStableFunc(out, func(a, b Notification) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out
}

// UnreadCount counts the entries not yet read.
func UnreadCount(list []Notification) int {
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}
