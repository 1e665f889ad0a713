package promotion

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluation messages returned on Valid=false results.
const (
	msgNotActive   = "Promotion is not currently active"
	msgUnknownType = "Unknown promotion type"
	msgNoEligible  = "No eligible items for this promotion"
)

// Evaluate decides whether the promotion applies to the given cart and
// computes the discount amount and its per-line distribution. It is a pure
// function: the promotion and lines are only read, and the wall clock is
// injected through now.
func Evaluate(p *Promotion, lines []CartLine, orderTotal decimal.Decimal, now time.Time) Result {
	if !IsActive(p, now) {
		return invalid(msgNotActive)
	}

	switch p.Type {
	case TypePercentage, TypeTimeBased:
		return evaluatePercentage(p, lines, orderTotal)
	case TypeFixedAmount:
		return evaluateFixedAmount(p, lines, orderTotal)
	case TypeBuyXGetY:
		return evaluateBuyXGetY(p, lines)
	default:
		return invalid(msgUnknownType)
	}
}

// IsActive reports whether the promotion is live at the given instant. Two
// gates must both pass: the absolute validity window, and — for time-based
// promotions — the schedule. The operator's Active switch is deliberately not
// consulted here; code resolution filters on it before evaluation.
func IsActive(p *Promotion, now time.Time) bool {
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	if p.Type != TypeTimeBased {
		return true
	}

	switch p.Schedule {
	case ScheduleDaily:
		return withinDailyWindow(p, now)
	case ScheduleWeekly:
		if !containsWeekday(p.ActiveDays, now.Weekday()) {
			return false
		}
		return withinDailyWindow(p, now)
	case ScheduleSpecificDates:
		if !containsString(p.SpecificDates, now.Format("2006-01-02")) {
			return false
		}
		return withinDailyWindow(p, now)
	default:
		// Unrecognized schedules fall through as unconstrained. Failing
		// closed instead would silently deactivate stored promotions with
		// newer schedule kinds.
		return true
	}
}

// withinDailyWindow checks the time-of-day range. Both bounds must be present
// for the gate to constrain anything. "HH:MM:SS" strings compare correctly
// byte-wise because the format is fixed-width and zero-padded.
func withinDailyWindow(p *Promotion, now time.Time) bool {
	if p.ActiveTimeStart == "" || p.ActiveTimeEnd == "" {
		return true
	}
	tod := now.Format("15:04:05")
	return tod >= p.ActiveTimeStart && tod <= p.ActiveTimeEnd
}

// EligibleLines filters the cart down to lines the promotion's scope
// restriction covers. An unrestricted promotion covers every line; otherwise
// a line qualifies when its product OR its category matches.
func EligibleLines(p *Promotion, lines []CartLine) []CartLine {
	if len(p.ApplicableProducts) == 0 && len(p.ApplicableCategories) == 0 {
		return lines
	}

	eligible := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if containsString(p.ApplicableProducts, l.ProductID) {
			eligible = append(eligible, l)
			continue
		}
		if l.CategoryID != "" && containsString(p.ApplicableCategories, l.CategoryID) {
			eligible = append(eligible, l)
		}
	}
	return eligible
}

func evaluatePercentage(p *Promotion, lines []CartLine, orderTotal decimal.Decimal) Result {
	eligible := EligibleLines(p, lines)
	if len(eligible) == 0 {
		return invalid(msgNoEligible)
	}
	if p.MinimumPurchase.IsPositive() && orderTotal.LessThan(p.MinimumPurchase) {
		return invalid(fmt.Sprintf("Minimum purchase of $%s required", p.MinimumPurchase))
	}

	total := decimal.Zero
	items := make([]Allocation, 0, len(eligible))
	for _, l := range eligible {
		lineDiscount := l.LineTotal().Mul(p.DiscountValue).Div(hundred)
		if lineDiscount.IsZero() {
			// Allocations list only lines that actually received a discount.
			continue
		}
		total = total.Add(lineDiscount)
		items = append(items, Allocation{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			DiscountPerItem: lineDiscount.Div(decimal.NewFromInt(int64(l.Quantity))),
			TotalDiscount:   lineDiscount,
		})
	}

	if p.MaximumDiscount.IsPositive() && total.GreaterThan(p.MaximumDiscount) {
		ratio := p.MaximumDiscount.Div(total)
		for i := range items {
			items[i].DiscountPerItem = items[i].DiscountPerItem.Mul(ratio)
			items[i].TotalDiscount = items[i].TotalDiscount.Mul(ratio)
		}
		// Clamp exactly: the scaled allocations may carry division residue,
		// but the headline amount must equal the cap.
		total = p.MaximumDiscount
	}

	return Result{Valid: true, DiscountAmount: total, EligibleItems: items, Promotion: p}
}

func evaluateFixedAmount(p *Promotion, lines []CartLine, orderTotal decimal.Decimal) Result {
	eligible := EligibleLines(p, lines)
	if len(eligible) == 0 {
		return invalid(msgNoEligible)
	}
	if p.MinimumPurchase.IsPositive() && orderTotal.LessThan(p.MinimumPurchase) {
		return invalid(fmt.Sprintf("Minimum purchase of $%s required", p.MinimumPurchase))
	}

	subtotal := decimal.Zero
	for _, l := range eligible {
		subtotal = subtotal.Add(l.LineTotal())
	}

	// A cart of zero-priced eligible lines is valid input but leaves nothing
	// to discount and no subtotal to distribute against.
	if subtotal.IsZero() {
		return Result{Valid: true, DiscountAmount: decimal.Zero, EligibleItems: []Allocation{}, Promotion: p}
	}

	// The flat discount never exceeds what the eligible lines are worth.
	amount := decimal.Min(p.DiscountValue, subtotal)

	items := make([]Allocation, 0, len(eligible))
	for _, l := range eligible {
		lineTotal := l.LineTotal()
		lineDiscount := amount.Mul(lineTotal).Div(subtotal)
		if lineDiscount.IsZero() {
			continue
		}
		items = append(items, Allocation{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			DiscountPerItem: lineDiscount.Div(decimal.NewFromInt(int64(l.Quantity))),
			TotalDiscount:   lineDiscount,
		})
	}

	return Result{Valid: true, DiscountAmount: amount, EligibleItems: items, Promotion: p}
}

func evaluateBuyXGetY(p *Promotion, lines []CartLine) Result {
	eligible := EligibleLines(p, lines)
	if len(eligible) == 0 {
		return invalid(msgNoEligible)
	}

	// A missing buy quantity defaults to 1, matching long-standing behavior
	// that stored promotions rely on.
	buyQty := p.BuyQuantity
	if buyQty < 1 {
		buyQty = 1
	}

	total := decimal.Zero
	items := make([]Allocation, 0, len(eligible))
	for _, l := range eligible {
		sets := l.Quantity / (buyQty + p.GetQuantity)
		freeUnits := sets * p.GetQuantity
		if freeUnits == 0 {
			continue
		}

		var perUnit decimal.Decimal
		switch p.GetDiscountType {
		case RewardFree:
			perUnit = l.UnitPrice
		case RewardPercentage:
			perUnit = l.UnitPrice.Mul(p.GetDiscountValue).Div(hundred)
		case RewardFixedAmount:
			perUnit = p.GetDiscountValue
		}

		lineDiscount := perUnit.Mul(decimal.NewFromInt(int64(freeUnits)))
		if lineDiscount.IsZero() {
			continue
		}
		total = total.Add(lineDiscount)
		items = append(items, Allocation{
			ProductID:       l.ProductID,
			Quantity:        freeUnits,
			DiscountPerItem: perUnit,
			TotalDiscount:   lineDiscount,
		})
	}

	if total.IsZero() {
		return invalid(fmt.Sprintf("Buy %d get %d - insufficient quantity", buyQty, p.GetQuantity))
	}

	return Result{Valid: true, DiscountAmount: total, EligibleItems: items, Promotion: p}
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	return slices.Contains(days, d)
}

func containsString(set []string, v string) bool {
	return slices.Contains(set, v)
}

func invalid(message string) Result {
	return Result{
		Valid:          false,
		DiscountAmount: decimal.Zero,
		EligibleItems:  []Allocation{},
		Message:        message,
	}
}
