package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

// Order is a completed customer order with pricing and discount details.
type Order struct {
	ID           string
	StoreID      string
	CustomerID   string
	Items        []OrderItem
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	Discount     decimal.Decimal
	DiscountCode string
	PromotionID  string
	// Allocation records how the discount was distributed across lines, as
	// computed by the promotion engine.
	Allocation []promotion.Allocation
	CreatedAt  time.Time
}

// OrderItem is a single line item in an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
