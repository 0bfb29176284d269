// Package order defines the persisted record of a completed checkout.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
)

// Order is one completed purchase: a snapshot of the basket at submission
// time, the discounted total, and the owning user. Orders are created exactly
// once and never mutated.
type Order struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Items     []basket.LineItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	Discount  int               `json:"discount,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
}
