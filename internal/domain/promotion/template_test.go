package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageDiscountTemplate(t *testing.T) {
	t.Parallel()

	t.Run("defaults validity to 30 days from now", func(t *testing.T) {
		before := time.Now()
		p := PercentageDiscount("s1", "Summer Sale", "20% off", dec("20"), []string{"SUMMER20"}, Options{})
		after := time.Now()

		assert.Equal(t, TypePercentage, p.Type)
		assert.True(t, p.Active)
		assert.Equal(t, []string{"SUMMER20"}, p.Codes)
		assert.False(t, p.StartDate.Before(before))
		assert.False(t, p.StartDate.After(after))
		assert.Equal(t, p.StartDate.Add(30*24*time.Hour), p.EndDate)
		require.NoError(t, p.Validate())
	})

	t.Run("honors explicit window and constraints", func(t *testing.T) {
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		p := PercentageDiscount("s1", "March", "", dec("10"), nil, Options{
			StartDate:          start,
			EndDate:            end,
			MinimumPurchase:    dec("25"),
			MaximumDiscount:    dec("40"),
			UsageLimit:         100,
			CustomerUsageLimit: 1,
			ApplicableProducts: []string{"p1"},
		})

		assert.Equal(t, start, p.StartDate)
		assert.Equal(t, end, p.EndDate)
		assert.True(t, p.MinimumPurchase.Equal(dec("25")))
		assert.Equal(t, 100, p.UsageLimit)
		assert.Equal(t, 1, p.CustomerUsageLimit)
		require.NoError(t, p.Validate())
	})
}

func TestBuyXGetYTemplate(t *testing.T) {
	t.Parallel()

	p := BuyXGetYPromotion("s1", "BOGO", "buy 2 get 1", 2, 1, RewardFree, []string{"BOGO"}, Options{
		ApplicableCategories: []string{"coffee"},
	})

	assert.Equal(t, TypeBuyXGetY, p.Type)
	assert.Equal(t, 2, p.BuyQuantity)
	assert.Equal(t, 1, p.GetQuantity)
	assert.Equal(t, RewardFree, p.GetDiscountType)
	assert.True(t, p.DiscountValue.IsZero())
	require.NoError(t, p.Validate())
}

func TestHappyHourTemplate(t *testing.T) {
	t.Parallel()

	p := HappyHourPromotion("s1", "Happy Hour", "", dec("18"), "17:00:00", "19:00:00", nil, Options{})

	assert.Equal(t, TypeTimeBased, p.Type)
	assert.Equal(t, ScheduleDaily, p.Schedule)
	assert.Equal(t, "17:00:00", p.ActiveTimeStart)
	assert.Equal(t, "19:00:00", p.ActiveTimeEnd)
	require.NoError(t, p.Validate())

	// Built promotion gates evaluation as configured.
	inHour := time.Date(2026, 6, 2, 18, 0, 0, 0, time.UTC)
	outHour := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsActive(&p, inHour))
	assert.False(t, IsActive(&p, outHour))
}

func TestWeekendSpecialTemplate(t *testing.T) {
	t.Parallel()

	t.Run("defaults to weekend daytime window", func(t *testing.T) {
		p := WeekendSpecial("s1", "Weekend", "", dec("15"), nil, Options{})

		assert.Equal(t, TypeTimeBased, p.Type)
		assert.Equal(t, ScheduleWeekly, p.Schedule)
		assert.ElementsMatch(t, []time.Weekday{time.Saturday, time.Sunday}, p.ActiveDays)
		assert.Equal(t, "10:00:00", p.ActiveTimeStart)
		assert.Equal(t, "22:00:00", p.ActiveTimeEnd)
		require.NoError(t, p.Validate())
	})

	t.Run("window override", func(t *testing.T) {
		p := WeekendSpecial("s1", "Brunch", "", dec("15"), nil, Options{
			ActiveTimeStart: "09:00:00",
			ActiveTimeEnd:   "14:00:00",
		})
		assert.Equal(t, "09:00:00", p.ActiveTimeStart)
		assert.Equal(t, "14:00:00", p.ActiveTimeEnd)
	})
}

func TestPromotionValidate(t *testing.T) {
	t.Parallel()

	t.Run("rejects percent out of range", func(t *testing.T) {
		p := PercentageDiscount("s1", "x", "", dec("120"), nil, Options{})
		assert.Error(t, p.Validate())
	})

	t.Run("rejects max discount on fixed amount", func(t *testing.T) {
		p := Promotion{
			Type:            TypeFixedAmount,
			DiscountValue:   dec("5"),
			MaximumDiscount: dec("10"),
		}
		assert.Error(t, p.Validate())
	})

	t.Run("rejects buy/get fields on percentage", func(t *testing.T) {
		p := PercentageDiscount("s1", "x", "", dec("10"), nil, Options{})
		p.BuyQuantity = 2
		assert.Error(t, p.Validate())
	})

	t.Run("rejects unknown reward type", func(t *testing.T) {
		p := BuyXGetYPromotion("s1", "x", "", 2, 1, RewardType("cashback"), nil, Options{})
		assert.Error(t, p.Validate())
	})

	t.Run("rejects weekly schedule without days", func(t *testing.T) {
		p := Promotion{
			Type:          TypeTimeBased,
			DiscountValue: decimal.NewFromInt(10),
			Schedule:      ScheduleWeekly,
		}
		assert.Error(t, p.Validate())
	})

	t.Run("rejects malformed time of day", func(t *testing.T) {
		p := HappyHourPromotion("s1", "x", "", dec("10"), "5pm", "7pm", nil, Options{})
		assert.Error(t, p.Validate())
	})

	t.Run("rejects malformed specific date", func(t *testing.T) {
		p := Promotion{
			Type:          TypeTimeBased,
			DiscountValue: decimal.NewFromInt(10),
			Schedule:      ScheduleSpecificDates,
			SpecificDates: []string{"06/02/2026"},
		}
		assert.Error(t, p.Validate())
	})
}
