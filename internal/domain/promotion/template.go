package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

// defaultValidity is the campaign length applied when no end date is given.
const defaultValidity = 30 * 24 * time.Hour

// Options is the optional-parameter bag shared by the template builders. Zero
// values mean "unset" and fall back to the documented defaults.
type Options struct {
	MinimumPurchase      decimal.Decimal
	MaximumDiscount      decimal.Decimal
	StartDate            time.Time // defaults to now
	EndDate              time.Time // defaults to StartDate + 30 days
	UsageLimit           int
	CustomerUsageLimit   int
	ApplicableProducts   []string
	ApplicableCategories []string

	// GetDiscountValue is consumed by BuyXGetYPromotion for non-free rewards.
	GetDiscountValue decimal.Decimal

	// ActiveTimeStart and ActiveTimeEnd override WeekendSpecial's default
	// 10:00:00-22:00:00 window.
	ActiveTimeStart string
	ActiveTimeEnd   string
}

// window resolves the validity window from the options.
func (o Options) window() (time.Time, time.Time) {
	start := o.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	end := o.EndDate
	if end.IsZero() {
		end = start.Add(defaultValidity)
	}
	return start, end
}

// PercentageDiscount builds an active percentage-off promotion. The template
// builders apply defaults only; they do not validate, and the evaluator must
// not rely on them for correctness.
func PercentageDiscount(storeID, name, description string, discountValue decimal.Decimal, codes []string, opts Options) Promotion {
	start, end := opts.window()
	return Promotion{
		StoreID:              storeID,
		Name:                 name,
		Description:          description,
		Type:                 TypePercentage,
		DiscountValue:        discountValue,
		MinimumPurchase:      opts.MinimumPurchase,
		MaximumDiscount:      opts.MaximumDiscount,
		StartDate:            start,
		EndDate:              end,
		UsageLimit:           opts.UsageLimit,
		CustomerUsageLimit:   opts.CustomerUsageLimit,
		ApplicableProducts:   opts.ApplicableProducts,
		ApplicableCategories: opts.ApplicableCategories,
		Active:               true,
		Codes:                codes,
	}
}

// BuyXGetYPromotion builds an active buy-X-get-Y promotion.
func BuyXGetYPromotion(storeID, name, description string, buyQty, getQty int, reward RewardType, codes []string, opts Options) Promotion {
	start, end := opts.window()
	return Promotion{
		StoreID:              storeID,
		Name:                 name,
		Description:          description,
		Type:                 TypeBuyXGetY,
		DiscountValue:        decimal.Zero,
		BuyQuantity:          buyQty,
		GetQuantity:          getQty,
		GetDiscountType:      reward,
		GetDiscountValue:     opts.GetDiscountValue,
		StartDate:            start,
		EndDate:              end,
		UsageLimit:           opts.UsageLimit,
		CustomerUsageLimit:   opts.CustomerUsageLimit,
		ApplicableProducts:   opts.ApplicableProducts,
		ApplicableCategories: opts.ApplicableCategories,
		Active:               true,
		Codes:                codes,
	}
}

// HappyHourPromotion builds a daily time-based percentage promotion active
// between the given times of day.
func HappyHourPromotion(storeID, name, description string, discountValue decimal.Decimal, activeTimeStart, activeTimeEnd string, codes []string, opts Options) Promotion {
	p := PercentageDiscount(storeID, name, description, discountValue, codes, opts)
	p.Type = TypeTimeBased
	p.Schedule = ScheduleDaily
	p.ActiveTimeStart = activeTimeStart
	p.ActiveTimeEnd = activeTimeEnd
	return p
}

// WeekendSpecial builds a weekly time-based percentage promotion pinned to
// Saturday and Sunday, defaulting to a 10:00:00-22:00:00 window.
func WeekendSpecial(storeID, name, description string, discountValue decimal.Decimal, codes []string, opts Options) Promotion {
	startTOD := opts.ActiveTimeStart
	if startTOD == "" {
		startTOD = "10:00:00"
	}
	endTOD := opts.ActiveTimeEnd
	if endTOD == "" {
		endTOD = "22:00:00"
	}

	p := PercentageDiscount(storeID, name, description, discountValue, codes, opts)
	p.Type = TypeTimeBased
	p.Schedule = ScheduleWeekly
	p.ActiveDays = []time.Weekday{time.Sunday, time.Saturday}
	p.ActiveTimeStart = startTOD
	p.ActiveTimeEnd = endTOD
	return p
}
