package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/retailcore/promotion-service/internal/domain/order"
	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

type orderRequest struct {
	StoreID      string             `json:"storeId"`
	CustomerID   string             `json:"customerId"`
	Items        []orderItemRequest `json:"items"`
	DiscountCode string             `json:"discountCode"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrder decodes the order request, delegates to the order service, and
// maps the result (or error) back to an HTTP response.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	result, err := h.orderService.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		StoreID:      req.StoreID,
		CustomerID:   req.CustomerID,
		Items:        items,
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("id")
	e.Str(result.Order.ID)
	e.FieldStart("subtotal")
	e.Float64(result.Order.Subtotal.InexactFloat64())
	e.FieldStart("total")
	e.Float64(result.Order.Total.InexactFloat64())
	e.FieldStart("discount")
	e.Float64(result.Order.Discount.InexactFloat64())
	if result.Order.DiscountCode != "" {
		e.FieldStart("discountCode")
		e.Str(result.Order.DiscountCode)
	}
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range result.Order.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("products")
	e.ArrStart()
	for _, p := range result.Products {
		encodeProduct(e, p)
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, r, http.StatusCreated, e)
}

// writeOrderError maps order-placement failures onto HTTP statuses.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnfErr *order.ProductNotFoundError
		iqErr  *order.InvalidQuantityError
		naErr  *order.NotApplicableError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, "items required")
	case errors.As(err, &iqErr):
		writeError(w, r, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pnfErr):
		writeError(w, r, http.StatusNotFound, pnfErr.Error())
	case errors.Is(err, promotion.ErrCodeNotFound):
		writeError(w, r, http.StatusNotFound, "discount code not found")
	case errors.Is(err, promotion.ErrUsageLimitReached),
		errors.Is(err, promotion.ErrCustomerLimitReached):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.As(err, &naErr):
		writeError(w, r, http.StatusUnprocessableEntity, naErr.Reason)
	default:
		zctx.From(r.Context()).Error("place order", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
