package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/promotion-service/internal/domain/product"
	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = fmt.Errorf("items required")
	ErrInvalidQuantity = fmt.Errorf("quantity must be greater than 0")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// NotApplicableError indicates the supplied discount code resolved to a
// promotion that does not apply to this cart. Reason carries the engine's
// human-readable message.
type NotApplicableError struct {
	Code   string
	Reason string
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("code %s not applicable: %s", e.Code, e.Reason)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	StoreID      string
	CustomerID   string
	Items        []OrderItem
	DiscountCode string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order    *Order
	Products []product.Product
}

// Tx runs a function inside one database transaction. Repository calls made
// with the ctx passed to fn join that transaction, so everything fn writes
// commits or rolls back together.
type Tx interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service encapsulates order placement business logic.
type Service struct {
	products   product.Repository
	promotions promotion.Validator
	orders     Repository
	tx         Tx
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products product.Repository,
	promotions promotion.Validator,
	orders Repository,
	tx Tx,
) *Service {
	return &Service{
		products:   products,
		promotions: promotions,
		orders:     orders,
		tx:         tx,
	}
}

// PlaceOrder validates items, fetches products in a single batch, redeems the
// discount code through the promotion engine when one is supplied, persists
// the order with its discount allocation, and returns the result.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs.
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	productMap := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Verify every requested product was found and build cart lines.
	products := make([]product.Product, 0, len(req.Items))
	lines := make([]promotion.CartLine, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		products = append(products, p)

		lines[i] = promotion.CartLine{
			ProductID:  p.ID,
			CategoryID: p.CategoryID,
			Quantity:   item.Quantity,
			UnitPrice:  p.Price,
		}
		subtotal = subtotal.Add(lines[i].LineTotal())
	}

	// Redemption and order persistence run inside one transaction: the usage
	// counters a redeem increments must never survive a failed order insert.
	// An inapplicable promotion fails the order with the engine's reason; the
	// engine result itself is never an error.
	var o *Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		discount := decimal.Zero
		var (
			promotionID string
			allocation  []promotion.Allocation
		)
		if req.DiscountCode != "" {
			res, err := s.promotions.Redeem(ctx, req.DiscountCode, req.CustomerID, lines, subtotal)
			if err != nil {
				return fmt.Errorf("redeem code: %w", err)
			}
			if !res.Valid {
				return &NotApplicableError{Code: req.DiscountCode, Reason: res.Message}
			}
			discount = res.DiscountAmount
			allocation = res.EligibleItems
			if res.Promotion != nil {
				promotionID = res.Promotion.ID
			}
		}

		// Total = subtotal - discount, floored at zero and rounded to 2 decimal places.
		total := subtotal.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}
		total = total.Round(2)

		o = &Order{
			ID:           uuid.New().String(),
			StoreID:      req.StoreID,
			CustomerID:   req.CustomerID,
			Items:        req.Items,
			Subtotal:     subtotal.Round(2),
			Total:        total,
			Discount:     discount.Round(2),
			DiscountCode: req.DiscountCode,
			PromotionID:  promotionID,
			Allocation:   allocation,
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PlaceOrderResult{
		Order:    o,
		Products: products,
	}, nil
}
