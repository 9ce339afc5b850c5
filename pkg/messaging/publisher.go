// Package messaging defines the event publishing port shared by the storefront services.
package messaging

import (
	"context"
)

// Product event subjects. ProductsWildcard matches all of them.
const (
	ProductsCreatedSubject    = "products.created"
	ProductsOutOfStockSubject = "products.out_of_stock"
	ProductsWildcard          = "products.>"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
