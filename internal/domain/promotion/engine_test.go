package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	// A Tuesday at noon, well inside the window.
	noon = time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func line(productID, categoryID string, qty int, unitPrice string) CartLine {
	return CartLine{ProductID: productID, CategoryID: categoryID, Quantity: qty, UnitPrice: dec(unitPrice)}
}

func cartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func TestEvaluatePercentage(t *testing.T) {
	t.Parallel()

	promo := &Promotion{
		Type:            TypePercentage,
		DiscountValue:   dec("20"),
		MinimumPurchase: dec("50"),
		MaximumDiscount: dec("100"),
		StartDate:       windowStart,
		EndDate:         windowEnd,
	}

	t.Run("applies to full cart", func(t *testing.T) {
		lines := []CartLine{
			line("p1", "c1", 2, "25"), // 50
			line("p2", "c2", 1, "40"), // 40
		}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assertDecimal(t, "18", res.DiscountAmount)
		require.Len(t, res.EligibleItems, 2)
		assertDecimal(t, "10", res.EligibleItems[0].TotalDiscount)
		assertDecimal(t, "8", res.EligibleItems[1].TotalDiscount)
		assertDecimal(t, "5", res.EligibleItems[0].DiscountPerItem)
	})

	t.Run("minimum purchase not met", func(t *testing.T) {
		lines := []CartLine{line("p1", "c1", 1, "30")}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.False(t, res.Valid)
		assert.Equal(t, "Minimum purchase of $50 required", res.Message)
		assert.True(t, res.DiscountAmount.IsZero())
		assert.Empty(t, res.EligibleItems)
	})

	t.Run("maximum discount caps the total exactly", func(t *testing.T) {
		lines := []CartLine{
			line("p1", "c1", 4, "100"), // 400
			line("p2", "c2", 2, "100"), // 200
		}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		// Uncapped discount would be 120.
		assertDecimal(t, "100", res.DiscountAmount)

		// Scaled allocations must still sum to the cap and keep proportions.
		sum := decimal.Zero
		for _, a := range res.EligibleItems {
			sum = sum.Add(a.TotalDiscount)
		}
		assert.True(t, sum.Sub(res.DiscountAmount).Abs().LessThan(dec("0.0001")),
			"allocations sum %s drifted from total %s", sum, res.DiscountAmount)
		assert.True(t, res.EligibleItems[0].TotalDiscount.GreaterThan(res.EligibleItems[1].TotalDiscount))
	})

	t.Run("zero discount value lists no allocations", func(t *testing.T) {
		free := &Promotion{
			Type:          TypePercentage,
			DiscountValue: dec("0"),
			StartDate:     windowStart,
			EndDate:       windowEnd,
		}
		lines := []CartLine{line("p1", "c1", 1, "100")}
		res := Evaluate(free, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assert.True(t, res.DiscountAmount.IsZero())
		assert.Empty(t, res.EligibleItems)
	})

	t.Run("no eligible items", func(t *testing.T) {
		scoped := &Promotion{
			Type:               TypePercentage,
			DiscountValue:      dec("10"),
			ApplicableProducts: []string{"other"},
			StartDate:          windowStart,
			EndDate:            windowEnd,
		}
		lines := []CartLine{line("p1", "c1", 1, "100")}
		res := Evaluate(scoped, lines, cartTotal(lines), noon)

		require.False(t, res.Valid)
		assert.Equal(t, "No eligible items for this promotion", res.Message)
	})

	t.Run("outside validity window", func(t *testing.T) {
		lines := []CartLine{line("p1", "c1", 2, "50")}
		res := Evaluate(promo, lines, cartTotal(lines), windowEnd.Add(time.Hour))

		require.False(t, res.Valid)
		assert.Equal(t, "Promotion is not currently active", res.Message)
	})
}

func TestEvaluateFixedAmount(t *testing.T) {
	t.Parallel()

	promo := &Promotion{
		Type:          TypeFixedAmount,
		DiscountValue: dec("15"),
		StartDate:     windowStart,
		EndDate:       windowEnd,
	}

	t.Run("distributes proportionally by line totals", func(t *testing.T) {
		lines := []CartLine{
			line("p1", "c1", 1, "60"), // 60 of 100
			line("p2", "c2", 2, "20"), // 40 of 100
		}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assertDecimal(t, "15", res.DiscountAmount)
		require.Len(t, res.EligibleItems, 2)
		assertDecimal(t, "9", res.EligibleItems[0].TotalDiscount)
		assertDecimal(t, "6", res.EligibleItems[1].TotalDiscount)
		assertDecimal(t, "3", res.EligibleItems[1].DiscountPerItem)
	})

	t.Run("never exceeds eligible subtotal", func(t *testing.T) {
		lines := []CartLine{line("p1", "c1", 1, "10")}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assertDecimal(t, "10", res.DiscountAmount)
	})

	t.Run("zero-priced cart yields zero discount", func(t *testing.T) {
		lines := []CartLine{line("freebie", "c1", 1, "0")}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assert.True(t, res.DiscountAmount.IsZero())
		assert.Empty(t, res.EligibleItems)
	})

	t.Run("zero-priced line gets no allocation", func(t *testing.T) {
		lines := []CartLine{
			line("freebie", "c1", 2, "0"),
			line("p1", "c1", 1, "20"),
		}
		res := Evaluate(promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assertDecimal(t, "15", res.DiscountAmount)
		require.Len(t, res.EligibleItems, 1)
		assert.Equal(t, "p1", res.EligibleItems[0].ProductID)
		assertDecimal(t, "15", res.EligibleItems[0].TotalDiscount)
	})

	t.Run("scope restricts the eligible subtotal", func(t *testing.T) {
		scoped := &Promotion{
			Type:                 TypeFixedAmount,
			DiscountValue:        dec("15"),
			ApplicableCategories: []string{"coffee"},
			StartDate:            windowStart,
			EndDate:              windowEnd,
		}
		lines := []CartLine{
			line("p1", "coffee", 1, "8"),
			line("p2", "bakery", 1, "100"),
		}
		res := Evaluate(scoped, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		// Only the coffee line is eligible, so the discount clamps to 8.
		assertDecimal(t, "8", res.DiscountAmount)
		require.Len(t, res.EligibleItems, 1)
		assert.Equal(t, "p1", res.EligibleItems[0].ProductID)
	})
}

func TestEvaluateBuyXGetY(t *testing.T) {
	t.Parallel()

	base := Promotion{
		Type:            TypeBuyXGetY,
		BuyQuantity:     2,
		GetQuantity:     1,
		GetDiscountType: RewardFree,
		StartDate:       windowStart,
		EndDate:         windowEnd,
	}

	t.Run("free units per complete set", func(t *testing.T) {
		promo := base
		lines := []CartLine{line("p1", "c1", 9, "4")}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		// 9 / (2+1) = 3 sets, 3 free units at $4.
		assertDecimal(t, "12", res.DiscountAmount)
		require.Len(t, res.EligibleItems, 1)
		assert.Equal(t, 3, res.EligibleItems[0].Quantity)
		assertDecimal(t, "4", res.EligibleItems[0].DiscountPerItem)
	})

	t.Run("insufficient quantity", func(t *testing.T) {
		promo := base
		lines := []CartLine{line("p1", "c1", 2, "4")}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.False(t, res.Valid)
		assert.Equal(t, "Buy 2 get 1 - insufficient quantity", res.Message)
	})

	t.Run("missing buy quantity defaults to one", func(t *testing.T) {
		promo := base
		promo.BuyQuantity = 0
		lines := []CartLine{line("p1", "c1", 4, "10")}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		// 4 / (1+1) = 2 sets, 2 free units.
		assertDecimal(t, "20", res.DiscountAmount)
	})

	t.Run("percentage reward on free units", func(t *testing.T) {
		promo := base
		promo.GetDiscountType = RewardPercentage
		promo.GetDiscountValue = dec("50")
		lines := []CartLine{line("p1", "c1", 6, "10")}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		// 2 sets, 2 units at 50% of $10.
		assertDecimal(t, "10", res.DiscountAmount)
	})

	t.Run("fixed reward per unit", func(t *testing.T) {
		promo := base
		promo.GetDiscountType = RewardFixedAmount
		promo.GetDiscountValue = dec("3")
		lines := []CartLine{line("p1", "c1", 3, "10")}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.True(t, res.Valid)
		assertDecimal(t, "3", res.DiscountAmount)
	})

	t.Run("sets counted per line not across lines", func(t *testing.T) {
		promo := base
		lines := []CartLine{
			line("p1", "c1", 2, "4"),
			line("p2", "c1", 1, "4"),
		}
		res := Evaluate(&promo, lines, cartTotal(lines), noon)

		require.False(t, res.Valid)
	})
}

func TestEvaluateUnknownType(t *testing.T) {
	t.Parallel()

	promo := &Promotion{
		Type:      Type("loyalty_points"),
		StartDate: windowStart,
		EndDate:   windowEnd,
	}
	lines := []CartLine{line("p1", "c1", 1, "10")}
	res := Evaluate(promo, lines, cartTotal(lines), noon)

	require.False(t, res.Valid)
	assert.Equal(t, "Unknown promotion type", res.Message)
}

func TestIsActiveSchedules(t *testing.T) {
	t.Parallel()

	base := Promotion{
		Type:          TypeTimeBased,
		DiscountValue: dec("18"),
		StartDate:     windowStart,
		EndDate:       windowEnd,
	}

	at := func(weekday time.Weekday, hour, minute, second int) time.Time {
		// June 1 2026 is a Monday.
		d := time.Date(2026, 6, 1, hour, minute, second, 0, time.UTC)
		return d.AddDate(0, 0, int(weekday-time.Monday))
	}

	t.Run("daily window boundaries are inclusive", func(t *testing.T) {
		promo := base
		promo.Schedule = ScheduleDaily
		promo.ActiveTimeStart = "17:00:00"
		promo.ActiveTimeEnd = "19:00:00"

		assert.True(t, IsActive(&promo, at(time.Tuesday, 17, 0, 0)))
		assert.True(t, IsActive(&promo, at(time.Tuesday, 19, 0, 0)))
		assert.True(t, IsActive(&promo, at(time.Tuesday, 18, 30, 12)))
		assert.False(t, IsActive(&promo, at(time.Tuesday, 16, 59, 59)))
		assert.False(t, IsActive(&promo, at(time.Tuesday, 19, 0, 1)))
	})

	t.Run("daily without bounds is unconstrained", func(t *testing.T) {
		promo := base
		promo.Schedule = ScheduleDaily

		assert.True(t, IsActive(&promo, at(time.Tuesday, 3, 0, 0)))
	})

	t.Run("weekly gates on weekday then time", func(t *testing.T) {
		promo := base
		promo.Schedule = ScheduleWeekly
		promo.ActiveDays = []time.Weekday{time.Sunday, time.Saturday}
		promo.ActiveTimeStart = "10:00:00"
		promo.ActiveTimeEnd = "22:00:00"

		assert.True(t, IsActive(&promo, at(time.Saturday, 12, 0, 0)))
		assert.True(t, IsActive(&promo, at(time.Sunday, 21, 59, 59)))
		assert.False(t, IsActive(&promo, at(time.Wednesday, 12, 0, 0)))
		assert.False(t, IsActive(&promo, at(time.Saturday, 9, 59, 59)))
	})

	t.Run("specific dates", func(t *testing.T) {
		promo := base
		promo.Schedule = ScheduleSpecificDates
		promo.SpecificDates = []string{"2026-06-02", "2026-07-04"}

		assert.True(t, IsActive(&promo, at(time.Tuesday, 12, 0, 0)))
		assert.False(t, IsActive(&promo, at(time.Wednesday, 12, 0, 0)))
	})

	t.Run("unknown schedule does not deactivate", func(t *testing.T) {
		promo := base
		promo.Schedule = Schedule("lunar")

		assert.True(t, IsActive(&promo, at(time.Tuesday, 12, 0, 0)))
	})

	t.Run("non time-based types ignore schedule fields", func(t *testing.T) {
		promo := base
		promo.Type = TypePercentage
		promo.ActiveTimeStart = "17:00:00"
		promo.ActiveTimeEnd = "19:00:00"

		assert.True(t, IsActive(&promo, at(time.Tuesday, 3, 0, 0)))
	})
}

func TestEligibleLines(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		line("P1", "C1", 1, "10"),
		line("P2", "C1", 1, "10"),
		line("P3", "C9", 1, "10"),
	}

	t.Run("unrestricted covers everything", func(t *testing.T) {
		promo := &Promotion{}
		assert.Len(t, EligibleLines(promo, lines), 3)
	})

	t.Run("product or category match", func(t *testing.T) {
		promo := &Promotion{
			ApplicableProducts:   []string{"P2"},
			ApplicableCategories: []string{"C9"},
		}
		eligible := EligibleLines(promo, lines)
		require.Len(t, eligible, 2)
		assert.Equal(t, "P2", eligible[0].ProductID)
		assert.Equal(t, "P3", eligible[1].ProductID)
	})

	t.Run("empty category never matches category scope", func(t *testing.T) {
		promo := &Promotion{ApplicableCategories: []string{""}}
		uncategorized := []CartLine{line("P1", "", 1, "10")}
		assert.Empty(t, EligibleLines(promo, uncategorized))
	})
}
