package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailcore/promotion-service/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, store_id, customer_id, items, subtotal, total,
		discount, discount_code, promotion_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))`

	createOrderDiscountSQL = `INSERT INTO order_discounts (order_id, product_id, quantity,
		discount_per_item, total_discount)
		VALUES ($1, $2, $3, $4, $5)`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists an order and its per-line discount allocation in one
// transaction, joining the one carried by ctx when present so the insert
// commits together with the usage consumption that preceded it. Items are
// serialized to JSON for the JSONB column; the allocation gets its own rows
// so reporting can aggregate per product.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	if tx, ok := txFrom(ctx); ok {
		return createOrder(ctx, tx, o, itemsJSON)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := createOrder(ctx, tx, o, itemsJSON); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

func createOrder(ctx context.Context, db dbtx, o *order.Order, itemsJSON []byte) error {
	_, err := db.Exec(ctx, createOrderSQL,
		o.ID, o.StoreID, o.CustomerID, itemsJSON, o.Subtotal, o.Total,
		o.Discount, o.DiscountCode, o.PromotionID,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, a := range o.Allocation {
		_, err = db.Exec(ctx, createOrderDiscountSQL,
			o.ID, a.ProductID, int32(a.Quantity), a.DiscountPerItem, a.TotalDiscount,
		)
		if err != nil {
			return fmt.Errorf("creating order discount for %q: %w", a.ProductID, err)
		}
	}
	return nil
}
