package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/retailcore/promotion-service/internal/domain/product"
	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

// writeJSON sends an encoded jx buffer with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("write response", zap.Error(err))
	}
}

// writeError sends a {"code":..,"message":..} error body.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, r, status, e)
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	e.FieldStart("categoryId")
	e.Str(p.CategoryID)
	e.ObjEnd()
}

func encodeResult(e *jx.Encoder, res *promotion.Result) {
	e.ObjStart()
	e.FieldStart("valid")
	e.Bool(res.Valid)
	e.FieldStart("discountAmount")
	e.Float64(res.DiscountAmount.InexactFloat64())
	e.FieldStart("eligibleItems")
	e.ArrStart()
	for _, a := range res.EligibleItems {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(a.ProductID)
		e.FieldStart("quantity")
		e.Int(a.Quantity)
		e.FieldStart("discountPerItem")
		e.Float64(a.DiscountPerItem.InexactFloat64())
		e.FieldStart("totalDiscount")
		e.Float64(a.TotalDiscount.InexactFloat64())
		e.ObjEnd()
	}
	e.ArrEnd()
	if res.Message != "" {
		e.FieldStart("message")
		e.Str(res.Message)
	}
	if res.Promotion != nil {
		e.FieldStart("promotion")
		e.ObjStart()
		e.FieldStart("id")
		e.Str(res.Promotion.ID)
		e.FieldStart("name")
		e.Str(res.Promotion.Name)
		e.FieldStart("type")
		e.Str(string(res.Promotion.Type))
		e.ObjEnd()
	}
	e.ObjEnd()
}
