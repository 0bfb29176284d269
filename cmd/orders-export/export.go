package main

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinel-sec/storefront/internal/domain/order"
)

const exportSQL = `SELECT id, user_id, items, total, discount, created_at
	FROM orders
	WHERE $1 = '' OR user_id::text = $1
	ORDER BY created_at`

// streamOrders walks the orders table oldest-first and hands each row to fn,
// without materializing the whole table in memory.
func streamOrders(ctx context.Context, pool *pgxpool.Pool, userID string, fn func(order.Order) error) error {
	rows, err := pool.Query(ctx, exportSQL, userID)
	if err != nil {
		return errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			o         order.Order
			itemsJSON []byte
		)
		if err := rows.Scan(&o.ID, &o.UserID, &itemsJSON, &o.Total, &o.Discount, &o.CreatedAt); err != nil {
			return errors.Wrap(err, "scan order")
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return errors.Wrap(err, "unmarshal order items")
		}
		if err := fn(o); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "iterate orders")
}
