// Package handler exposes the HTTP surface of the promotion service.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailcore/promotion-service/internal/domain/auth"
	"github.com/retailcore/promotion-service/internal/domain/order"
	"github.com/retailcore/promotion-service/internal/domain/product"
	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

// Handler implements the HTTP API, delegating business logic to the injected
// domain services and repositories.
type Handler struct {
	products     product.Repository
	orderService *order.Service
	validator    promotion.Validator
	promotions   promotion.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	orderService *order.Service,
	validator promotion.Validator,
	promotions promotion.Repository,
) *Handler {
	return &Handler{
		products:     products,
		orderService: orderService,
		validator:    validator,
		promotions:   promotions,
	}
}

// Router builds the chi route tree. Catalog reads and code validation are
// public; order placement and promotion administration require an API key.
func (h *Handler) Router(apikeys auth.Repository, pepper []byte) http.Handler {
	r := chi.NewRouter()

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Post("/promotions/validate", h.ValidateCode)

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(apikeys, pepper))
		r.Post("/orders", h.PlaceOrder)
		r.Post("/promotions", h.CreatePromotion)
	})

	return r
}
