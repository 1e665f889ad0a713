package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported promotion variants.
type Type string

const (
	// TypePercentage discounts eligible lines by a percentage of their total.
	TypePercentage Type = "percentage"
	// TypeFixedAmount subtracts a flat currency amount, distributed across
	// eligible lines proportionally to their share of the eligible subtotal.
	TypeFixedAmount Type = "fixed_amount"
	// TypeBuyXGetY grants free or discounted units for complete buy/get sets.
	TypeBuyXGetY Type = "buy_x_get_y"
	// TypeTimeBased is a percentage discount gated by a recurring schedule
	// (happy hour, weekend special, specific dates).
	TypeTimeBased Type = "time_based"
)

// RewardType enumerates how the "get" units of a buy-X-get-Y promotion are
// discounted.
type RewardType string

const (
	// RewardFree makes each qualifying unit free.
	RewardFree RewardType = "free"
	// RewardPercentage discounts each qualifying unit by a percentage of its
	// unit price.
	RewardPercentage RewardType = "percentage"
	// RewardFixedAmount discounts each qualifying unit by a flat currency
	// amount, regardless of its price.
	RewardFixedAmount RewardType = "fixed_amount"
)

// Schedule enumerates the recurrence patterns of a time-based promotion.
type Schedule string

const (
	// ScheduleDaily activates every day within an optional time-of-day range.
	ScheduleDaily Schedule = "daily"
	// ScheduleWeekly activates on configured weekdays, within an optional
	// time-of-day range.
	ScheduleWeekly Schedule = "weekly"
	// ScheduleSpecificDates activates on an explicit list of calendar dates.
	ScheduleSpecificDates Schedule = "specific_dates"
)

var (
	// ErrCodeNotFound is returned when a discount code does not resolve to an
	// active promotion.
	ErrCodeNotFound = errors.New("discount code not found")
	// ErrUsageLimitReached is returned when a promotion has exhausted its
	// global usage limit.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
	// ErrCustomerLimitReached is returned when a customer has exhausted their
	// per-customer usage allowance for a promotion.
	ErrCustomerLimitReached = errors.New("customer usage limit reached")
)

// Promotion is a discount campaign definition. The Type field selects which
// optional field group is meaningful; Validate enforces that only the matching
// group is populated, since Go cannot make the illegal combinations
// unrepresentable.
type Promotion struct {
	ID          string
	StoreID     string
	Name        string
	Description string

	Type Type

	// DiscountValue is a percent (0-100) for percentage and time_based
	// promotions and a currency amount for fixed_amount. It is zero for
	// buy_x_get_y.
	DiscountValue decimal.Decimal

	// MinimumPurchase, when positive, is a floor on the order total.
	MinimumPurchase decimal.Decimal
	// MaximumDiscount, when positive, caps the computed discount.
	// Percentage-type promotions only.
	MaximumDiscount decimal.Decimal

	// Buy-X-get-Y fields, meaningful only when Type is TypeBuyXGetY.
	BuyQuantity      int
	GetQuantity      int
	GetDiscountType  RewardType
	GetDiscountValue decimal.Decimal

	// Schedule fields, meaningful only when Type is TypeTimeBased.
	Schedule Schedule
	// ActiveTimeStart and ActiveTimeEnd are zero-padded "HH:MM:SS" strings.
	// Empty means the corresponding bound is absent and the time-of-day gate
	// passes unconditionally.
	ActiveTimeStart string
	ActiveTimeEnd   string
	// ActiveDays lists the weekdays a weekly schedule is active on.
	ActiveDays []time.Weekday
	// SpecificDates lists "YYYY-MM-DD" strings for ScheduleSpecificDates.
	SpecificDates []string

	// Validity window, enforced for every type.
	StartDate time.Time
	EndDate   time.Time

	// UsageLimit caps total redemptions; zero means unlimited. UsageCount is
	// maintained by the persistence layer and is read-only here.
	UsageLimit         int
	UsageCount         int
	CustomerUsageLimit int

	// ApplicableProducts and ApplicableCategories restrict which cart lines
	// the promotion applies to. Both empty means every line is eligible.
	ApplicableProducts   []string
	ApplicableCategories []string

	// Active is the operator's administrative switch, independent of the
	// validity window and schedule.
	Active bool

	// Codes holds the redemption code strings bound to this promotion.
	Codes []string
}

// CartLine is a single order line supplied to the engine. Lines are never
// mutated during evaluation.
type CartLine struct {
	ProductID  string
	CategoryID string
	Quantity   int
	UnitPrice  decimal.Decimal
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Allocation records how much of the total discount one cart line received.
type Allocation struct {
	ProductID string
	// Quantity is the line quantity for percentage and fixed-amount
	// promotions, and the number of free/discounted units for buy-X-get-Y.
	Quantity        int
	DiscountPerItem decimal.Decimal
	TotalDiscount   decimal.Decimal
}

// Result is the outcome of evaluating a promotion against a cart. Business
// rejections (inactive, no eligible items, minimum not met, insufficient BOGO
// quantity) are reported as Valid=false with a Message, never as errors.
type Result struct {
	Valid          bool
	DiscountAmount decimal.Decimal
	EligibleItems  []Allocation
	Message        string
	Promotion      *Promotion
}

// Repository resolves discount codes to promotions and maintains usage
// counters. Counter updates must be conditional at the database so concurrent
// redemptions cannot exceed the limits.
type Repository interface {
	// FindByCode resolves an active, non-deleted promotion by one of its
	// discount codes. Returns ErrCodeNotFound when no such promotion exists.
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	// ConsumeUsage atomically increments the promotion's global usage counter
	// and, when customerID is non-empty and the promotion carries a
	// per-customer limit, the customer's counter. Returns
	// ErrUsageLimitReached or ErrCustomerLimitReached when a limit is hit.
	ConsumeUsage(ctx context.Context, p *Promotion, customerID string) error
	// Create persists a new promotion definition with its codes.
	Create(ctx context.Context, p *Promotion) error
}

// Validate checks that the promotion's field groups are consistent with its
// type. The engine itself does not defensively validate; this is meant for
// construction and admin-input boundaries.
func (p *Promotion) Validate() error {
	switch p.Type {
	case TypePercentage, TypeTimeBased:
		if p.DiscountValue.IsNegative() || p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return errors.Errorf("discount value %s out of percent range", p.DiscountValue)
		}
	case TypeFixedAmount:
		if p.DiscountValue.IsNegative() {
			return errors.New("discount value must not be negative")
		}
		if p.MaximumDiscount.IsPositive() {
			return errors.New("maximum discount applies to percentage promotions only")
		}
	case TypeBuyXGetY:
		if p.BuyQuantity < 1 || p.GetQuantity < 1 {
			return errors.New("buy and get quantities must be at least 1")
		}
		switch p.GetDiscountType {
		case RewardFree:
		case RewardPercentage, RewardFixedAmount:
			if !p.GetDiscountValue.IsPositive() {
				return errors.Errorf("get discount value required for reward type %q", p.GetDiscountType)
			}
		default:
			return errors.Errorf("unknown reward type %q", p.GetDiscountType)
		}
	default:
		return errors.Errorf("unknown promotion type %q", p.Type)
	}

	if p.Type != TypeBuyXGetY && (p.BuyQuantity != 0 || p.GetQuantity != 0 || p.GetDiscountType != "") {
		return errors.Errorf("buy/get fields set on %s promotion", p.Type)
	}

	if p.Type == TypeTimeBased {
		return p.validateSchedule()
	}
	if p.Schedule != "" || p.ActiveTimeStart != "" || p.ActiveTimeEnd != "" ||
		len(p.ActiveDays) > 0 || len(p.SpecificDates) > 0 {
		return errors.Errorf("schedule fields set on %s promotion", p.Type)
	}
	return nil
}

func (p *Promotion) validateSchedule() error {
	switch p.Schedule {
	case ScheduleDaily:
	case ScheduleWeekly:
		if len(p.ActiveDays) == 0 {
			return errors.New("weekly schedule requires active days")
		}
		for _, d := range p.ActiveDays {
			if d < time.Sunday || d > time.Saturday {
				return errors.Errorf("invalid weekday %d", d)
			}
		}
	case ScheduleSpecificDates:
		if len(p.SpecificDates) == 0 {
			return errors.New("specific_dates schedule requires dates")
		}
		for _, d := range p.SpecificDates {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return errors.Wrapf(err, "invalid date %q", d)
			}
		}
	default:
		return errors.Errorf("unknown schedule %q", p.Schedule)
	}

	for _, v := range []string{p.ActiveTimeStart, p.ActiveTimeEnd} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("15:04:05", v); err != nil {
			return errors.Wrapf(err, "invalid time of day %q", v)
		}
	}
	return nil
}
