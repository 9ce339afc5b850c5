package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

// ProductCreatedEvent is published once a product has been stored.
type ProductCreatedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductOutOfStockEvent is published when a stock update brings the quantity to zero.
type ProductOutOfStockEvent struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Version    int32     `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductOutOfStockEvent) Subject() string {
	return messaging.ProductsOutOfStockSubject
}

func (e ProductOutOfStockEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
