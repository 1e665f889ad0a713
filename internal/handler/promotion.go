package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/promotion-service/internal/domain/promotion"
)

type validateRequest struct {
	Code       string            `json:"code"`
	CustomerID string            `json:"customerId"`
	Items      []cartLineRequest `json:"items"`
}

type cartLineRequest struct {
	ProductID  string          `json:"productId"`
	CategoryID string          `json:"categoryId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// ValidateCode runs a dry-run evaluation of a discount code against the
// submitted cart. Business rejections come back as 200 with valid=false; only
// unknown or exhausted codes map to error statuses.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, r, http.StatusBadRequest, "code required")
		return
	}

	lines := make([]promotion.CartLine, len(req.Items))
	orderTotal := decimal.Zero
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			writeError(w, r, http.StatusBadRequest, "quantity must be greater than 0")
			return
		}
		lines[i] = promotion.CartLine{
			ProductID:  it.ProductID,
			CategoryID: it.CategoryID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		}
		orderTotal = orderTotal.Add(lines[i].LineTotal())
	}

	res, err := h.validator.Validate(r.Context(), req.Code, req.CustomerID, lines, orderTotal)
	if err != nil {
		switch {
		case errors.Is(err, promotion.ErrCodeNotFound):
			writeError(w, r, http.StatusNotFound, "discount code not found")
		case errors.Is(err, promotion.ErrUsageLimitReached):
			writeError(w, r, http.StatusConflict, "promotion usage limit reached")
		default:
			zctx.From(r.Context()).Error("validate code", zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	e := &jx.Encoder{}
	encodeResult(e, res)
	writeJSON(w, r, http.StatusOK, e)
}

type createPromotionRequest struct {
	StoreID     string `json:"storeId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`

	DiscountValue   decimal.Decimal `json:"discountValue"`
	MinimumPurchase decimal.Decimal `json:"minimumPurchase"`
	MaximumDiscount decimal.Decimal `json:"maximumDiscount"`

	BuyQuantity      int             `json:"buyQuantity"`
	GetQuantity      int             `json:"getQuantity"`
	GetDiscountType  string          `json:"getDiscountType"`
	GetDiscountValue decimal.Decimal `json:"getDiscountValue"`

	Schedule        string   `json:"timeBasedType"`
	ActiveTimeStart string   `json:"activeTimeStart"`
	ActiveTimeEnd   string   `json:"activeTimeEnd"`
	ActiveDays      []int    `json:"activeDays"`
	SpecificDates   []string `json:"specificDates"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	UsageLimit         int `json:"usageLimit"`
	CustomerUsageLimit int `json:"customerUsageLimit"`

	ApplicableProducts   []string `json:"applicableToProducts"`
	ApplicableCategories []string `json:"applicableToCategories"`

	Codes []string `json:"discountCodes"`
}

// CreatePromotion persists an operator-defined promotion after validating
// that its field groups are consistent with the declared type.
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req createPromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name required")
		return
	}

	days := make([]time.Weekday, len(req.ActiveDays))
	for i, d := range req.ActiveDays {
		days[i] = time.Weekday(d)
	}

	start := req.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	end := req.EndDate
	if end.IsZero() {
		end = start.Add(30 * 24 * time.Hour)
	}

	p := promotion.Promotion{
		StoreID:              req.StoreID,
		Name:                 req.Name,
		Description:          req.Description,
		Type:                 promotion.Type(req.Type),
		DiscountValue:        req.DiscountValue,
		MinimumPurchase:      req.MinimumPurchase,
		MaximumDiscount:      req.MaximumDiscount,
		BuyQuantity:          req.BuyQuantity,
		GetQuantity:          req.GetQuantity,
		GetDiscountType:      promotion.RewardType(req.GetDiscountType),
		GetDiscountValue:     req.GetDiscountValue,
		Schedule:             promotion.Schedule(req.Schedule),
		ActiveTimeStart:      req.ActiveTimeStart,
		ActiveTimeEnd:        req.ActiveTimeEnd,
		ActiveDays:           days,
		SpecificDates:        req.SpecificDates,
		StartDate:            start,
		EndDate:              end,
		UsageLimit:           req.UsageLimit,
		CustomerUsageLimit:   req.CustomerUsageLimit,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
		Active:               true,
		Codes:                req.Codes,
	}

	if err := p.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.promotions.Create(r.Context(), &p); err != nil {
		zctx.From(r.Context()).Error("create promotion", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.ObjEnd()
	writeJSON(w, r, http.StatusCreated, e)
}
