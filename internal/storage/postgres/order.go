package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
	"github.com/sentinel-sec/storefront/internal/domain/order"
)

const createOrderSQL = `INSERT INTO orders (id, user_id, items, total, discount, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

const listOrdersSQL = `SELECT id, user_id, items, total, discount, created_at
	FROM orders
	WHERE user_id = $1
	ORDER BY created_at DESC`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The order items are serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, o.Total, o.Discount, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// ListByUser returns the user's orders, most recent first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var (
			o         order.Order
			itemsJSON []byte
		)
		if err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &o.Total, &o.Discount, &o.CreatedAt); err != nil {
			return order.Order{}, err
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
		}
		if o.Items == nil {
			o.Items = []basket.LineItem{}
		}
		return o, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}

	return orders, nil
}
