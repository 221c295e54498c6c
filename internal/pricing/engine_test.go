package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimmerbot/internal/models"
)

func testCabin() *models.Cabin {
	return &models.Cabin{
		ShortCode:         "ZB01",
		Name:              "יולי",
		BasePricePerNight: decimal.NewFromInt(500),
		WeekendPrice:      decimal.NewFromInt(650),
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestQuoteRegularNights(t *testing.T) {
	e := New(Options{})
	// Sun -> Tue, two regular February nights.
	b := e.Quote(testCabin(), day("2026-02-01"), day("2026-02-03"), nil, true)

	assert.Equal(t, 2, b.Nights)
	assert.Equal(t, 2, b.RegularNights)
	assert.Equal(t, 0, b.WeekendNights)
	assert.Equal(t, "1000", b.Total.String())
}

func TestQuoteWeekendNights(t *testing.T) {
	e := New(Options{})
	// Fri -> Sun, both nights priced at the weekend rate.
	b := e.Quote(testCabin(), day("2026-02-06"), day("2026-02-08"), nil, true)

	assert.Equal(t, 2, b.Nights)
	assert.Equal(t, 2, b.WeekendNights)
	assert.Equal(t, "300", b.WeekendSurcharge.String())
	assert.Equal(t, "1300", b.Total.String())
}

func TestQuoteHolidaySurcharge(t *testing.T) {
	e := New(Options{})
	// Independence Day 2026. Thursday, so no weekend rate.
	b := e.Quote(testCabin(), day("2026-05-14"), day("2026-05-15"), nil, true)

	assert.Equal(t, 1, b.Nights)
	assert.Equal(t, 1, b.HolidayNights)
	assert.Equal(t, "250", b.HolidaySurcharge.String())
	assert.Equal(t, "750", b.Total.String())
}

func TestQuoteWeekDiscount(t *testing.T) {
	e := New(Options{})
	// 5 regular + 2 weekend nights, 10% off.
	b := e.Quote(testCabin(), day("2026-02-01"), day("2026-02-08"), nil, true)

	require.Equal(t, 7, b.Nights)
	assert.Equal(t, 5, b.RegularNights)
	assert.Equal(t, 2, b.WeekendNights)
	assert.Equal(t, "3800", b.Subtotal.String())
	assert.Equal(t, "10", b.Discount.Percent.String())
	assert.Equal(t, "380", b.Discount.Amount.String())
	assert.Equal(t, "3420", b.Total.String())
}

func TestQuoteZeroNights(t *testing.T) {
	e := New(Options{})
	b := e.Quote(testCabin(), day("2026-02-03"), day("2026-02-03"), nil, true)

	assert.Equal(t, 0, b.Nights)
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.Subtotal.IsZero())
	assert.Empty(t, b.Days)
}

func TestQuoteReversedRangeIsZero(t *testing.T) {
	e := New(Options{})
	b := e.Quote(testCabin(), day("2026-02-05"), day("2026-02-03"), nil, true)
	assert.Equal(t, 0, b.Nights)
	assert.True(t, b.Total.IsZero())
}

func TestQuoteThursdayToSaturdaySplit(t *testing.T) {
	e := New(Options{})
	// Thu night regular, Fri night weekend.
	b := e.Quote(testCabin(), day("2026-02-05"), day("2026-02-07"), nil, true)

	assert.Equal(t, 1, b.RegularNights)
	assert.Equal(t, 1, b.WeekendNights)
	assert.Equal(t, "1150", b.Total.String())
}

func TestQuoteHighSeason(t *testing.T) {
	e := New(Options{})
	// July weekday night: base + 20%.
	b := e.Quote(testCabin(), day("2026-07-06"), day("2026-07-07"), nil, true)

	assert.Equal(t, 1, b.HighSeasonNights)
	assert.Equal(t, "100", b.HighSeasonSurcharge.String())
	assert.Equal(t, "600", b.Total.String())
}

func TestQuoteHolidaySeason(t *testing.T) {
	e := New(Options{})
	// April weekday that is not in the holiday table: base + 30%.
	b := e.Quote(testCabin(), day("2026-04-01"), day("2026-04-02"), nil, true)

	assert.Equal(t, 0, b.HolidayNights)
	assert.Equal(t, "150", b.HighSeasonSurcharge.String())
	assert.Equal(t, "650", b.Total.String())
}

func TestQuoteHolidayTrumpsSeason(t *testing.T) {
	e := New(Options{})
	// Rosh Hashanah: only the 50% holiday surcharge applies even though
	// September is a holiday-season month.
	b := e.Quote(testCabin(), day("2026-09-15"), day("2026-09-16"), nil, true)

	assert.Equal(t, 1, b.HolidayNights)
	assert.Equal(t, 0, b.HighSeasonNights)
	assert.Equal(t, "250", b.HolidaySurcharge.String())
	assert.True(t, b.HighSeasonSurcharge.IsZero())
	assert.Equal(t, "750", b.Total.String())
}

func TestQuoteAddonsCountTowardDiscount(t *testing.T) {
	e := New(Options{})
	addons := []Addon{
		{Name: "ארוחת בוקר", Price: decimal.NewFromInt(120)},
		{Name: "ג'קוזי", Price: decimal.NewFromInt(80)},
	}
	// 4 regular nights -> 5% tier applied to nights + addons.
	b := e.Quote(testCabin(), day("2026-02-01"), day("2026-02-05"), addons, true)

	assert.Equal(t, "200", b.AddonsTotal.String())
	assert.Equal(t, "2200", b.Subtotal.String())
	assert.Equal(t, "5", b.Discount.Percent.String())
	assert.Equal(t, "110", b.Discount.Amount.String())
	assert.Equal(t, "2090", b.Total.String())
}

func TestQuoteDiscountTiers(t *testing.T) {
	e := New(Options{})
	cases := []struct {
		nights  int
		percent string
	}{
		{3, "0"},
		{4, "5"},
		{7, "10"},
		{14, "12"},
		{30, "15"},
	}
	start := day("2026-02-01")
	for _, tc := range cases {
		b := e.Quote(testCabin(), start, start.AddDate(0, 0, tc.nights), nil, true)
		assert.Equal(t, tc.percent, b.Discount.Percent.String(), "nights=%d", tc.nights)
	}
}

func TestQuoteDiscountsDisabled(t *testing.T) {
	e := New(Options{})
	b := e.Quote(testCabin(), day("2026-02-01"), day("2026-02-08"), nil, false)

	assert.True(t, b.Discount.Amount.IsZero())
	assert.Equal(t, b.Subtotal.String(), b.Total.String())
}

func TestQuoteWeekendRateNeverBelowBase(t *testing.T) {
	e := New(Options{})
	cabin := testCabin()
	cabin.WeekendPrice = decimal.NewFromInt(400)
	// Weekend price below base: the base rate wins.
	b := e.Quote(cabin, day("2026-02-06"), day("2026-02-07"), nil, true)

	assert.Equal(t, 1, b.WeekendNights)
	assert.True(t, b.WeekendSurcharge.IsZero())
	assert.Equal(t, "500", b.Total.String())
}

func TestQuoteCustomHolidayTable(t *testing.T) {
	e := New(Options{Holidays: []string{"2026-02-02"}})
	b := e.Quote(testCabin(), day("2026-02-02"), day("2026-02-03"), nil, true)

	assert.Equal(t, 1, b.HolidayNights)
	assert.Equal(t, "750", b.Total.String())
}
