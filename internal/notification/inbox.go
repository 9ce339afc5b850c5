package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/abgdnv/storefront/internal/notification/kv"
)

// DefaultMaxItems is the number of notifications kept when the inbox is not configured otherwise.
const DefaultMaxItems = 50

// ErrNotFound is returned by MarkRead for an unknown id.
var ErrNotFound = errors.New("notification not found")

// Inbox persists the notification list as one JSON document under a single key.
// Read-modify-write cycles are serialised within the process; several processes sharing
// the same key may overwrite each other.
type Inbox struct {
	mu       sync.Mutex
	store    kv.Store
	key      string
	maxItems int
}

// NewInbox creates an inbox stored under key. A non-positive maxItems means DefaultMaxItems.
func NewInbox(store kv.Store, key string, maxItems int) *Inbox {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Inbox{store: store, key: key, maxItems: maxItems}
}

// List returns the stored notifications, newest first.
func (b *Inbox) List(ctx context.Context) ([]Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Merge folds incoming into the stored list and persists the result.
func (b *Inbox) Merge(ctx context.Context, incoming ...Notification) ([]Notification, error) {
	return b.update(ctx, func(list []Notification) ([]Notification, error) {
		return Merge(list, incoming), nil
	})
}

// MarkRead flags one notification as read.
func (b *Inbox) MarkRead(ctx context.Context, id string) error {
	_, err := b.update(ctx, func(list []Notification) ([]Notification, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].Read = true
				return list, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	return err
}

// MarkAllRead flags every notification as read.
func (b *Inbox) MarkAllRead(ctx context.Context) error {
	_, err := b.update(ctx, func(list []Notification) ([]Notification, error) {
		for i := range list {
			list[i].Read = true
		}
		return list, nil
	})
	return err
}

// UnreadCount returns the number of unread notifications.
func (b *Inbox) UnreadCount(ctx context.Context) (int, error) {
	list, err := b.List(ctx)
	if err != nil {
		return 0, err
	}
	return UnreadCount(list), nil
}

func (b *Inbox) update(ctx context.Context, fn func([]Notification) ([]Notification, error)) ([]Notification, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	list, err = fn(list)
	if err != nil {
		return nil, err
	}
	if len(list) > b.maxItems {
		list = list[:b.maxItems]
	}

	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := b.store.Set(ctx, b.key, data); err != nil {
		return nil, fmt.Errorf("failed to persist notifications: %w", err)
	}
	return list, nil
}

// load treats a missing key as an empty list. A payload that does not decode is an error.
func (b *Inbox) load(ctx context.Context) ([]Notification, error) {
	data, err := b.store.Get(ctx, b.key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return []Notification{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("corrupt notification list under %q: %w", b.key, err)
	}
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}
