// Package pricing computes per-night stay prices with seasonal and
// holiday surcharges, length-of-stay discounts, and addons.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"zimmerbot/internal/dates"
	"zimmerbot/internal/models"
)

var (
	half       = decimal.NewFromFloat(0.5)
	fifth      = decimal.NewFromFloat(0.2)
	threeTen   = decimal.NewFromFloat(0.3)
	oneHundred = decimal.NewFromInt(100)
)

// Addon is a priced extra attached to a quote (breakfast, jacuzzi, ...).
type Addon struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Discount describes the length-of-stay discount applied to a quote.
type Discount struct {
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason,omitempty"`
}

// DayCharge is the price of one night of the stay.
type DayCharge struct {
	Date       string          `json:"date"`
	Weekend    bool            `json:"isWeekend"`
	Holiday    bool            `json:"isHoliday"`
	HighSeason bool            `json:"isHighSeason"`
	Price      decimal.Decimal `json:"price"`
}

// Breakdown is the full itemized result of a quote.
type Breakdown struct {
	Nights           int `json:"nights"`
	RegularNights    int `json:"regularNights"`
	WeekendNights    int `json:"weekendNights"`
	HolidayNights    int `json:"holidayNights"`
	HighSeasonNights int `json:"highSeasonNights"`

	BaseTotal           decimal.Decimal `json:"baseTotal"`
	WeekendSurcharge    decimal.Decimal `json:"weekendSurcharge"`
	HolidaySurcharge    decimal.Decimal `json:"holidaySurcharge"`
	HighSeasonSurcharge decimal.Decimal `json:"highSeasonSurcharge"`

	AddonsTotal decimal.Decimal `json:"addonsTotal"`
	Addons      []Addon         `json:"addons,omitempty"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Discount Discount        `json:"discount"`
	Total    decimal.Decimal `json:"total"`

	Days []DayCharge `json:"breakdown"`
}

// Engine prices stays against a holiday table and season month lists.
// The zero value is unusable; construct with New.
type Engine struct {
	holidays            map[string]struct{}
	highSeasonMonths    map[time.Month]struct{}
	holidaySeasonMonths map[time.Month]struct{}
}

// Options overrides the built-in holiday and season tables.
type Options struct {
	Holidays            []string
	HighSeasonMonths    []int
	HolidaySeasonMonths []int
}

// Israeli holidays, 2026. Pesach, Independence Day, Shavuot, Rosh
// Hashanah, Yom Kippur, Sukkot.
var defaultHolidays = []string{
	"2026-04-22", "2026-04-23", "2026-04-24", "2026-04-28", "2026-04-29",
	"2026-05-14",
	"2026-06-11",
	"2026-09-15", "2026-09-16", "2026-09-24",
	"2026-09-29", "2026-09-30", "2026-10-01", "2026-10-06", "2026-10-07",
}

var (
	defaultHighSeason    = []int{7, 8}
	defaultHolidaySeason = []int{4, 9, 10}
)

// New builds an Engine. Zero-valued Options fields fall back to the
// built-in 2026 tables.
func New(opts Options) *Engine {
	if len(opts.Holidays) == 0 {
		opts.Holidays = defaultHolidays
	}
	if len(opts.HighSeasonMonths) == 0 {
		opts.HighSeasonMonths = defaultHighSeason
	}
	if len(opts.HolidaySeasonMonths) == 0 {
		opts.HolidaySeasonMonths = defaultHolidaySeason
	}

	e := &Engine{
		holidays:            make(map[string]struct{}, len(opts.Holidays)),
		highSeasonMonths:    make(map[time.Month]struct{}, len(opts.HighSeasonMonths)),
		holidaySeasonMonths: make(map[time.Month]struct{}, len(opts.HolidaySeasonMonths)),
	}
	for _, d := range opts.Holidays {
		e.holidays[d] = struct{}{}
	}
	for _, m := range opts.HighSeasonMonths {
		e.highSeasonMonths[time.Month(m)] = struct{}{}
	}
	for _, m := range opts.HolidaySeasonMonths {
		e.holidaySeasonMonths[time.Month(m)] = struct{}{}
	}
	return e
}

// IsWeekend reports whether the night starting on d is a weekend night
// (Friday or Saturday).
func (e *Engine) IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// IsHoliday reports whether d is in the holiday table.
func (e *Engine) IsHoliday(d time.Time) bool {
	_, ok := e.holidays[d.Format(dates.ISO)]
	return ok
}

func (e *Engine) isHighSeason(d time.Time) bool {
	_, ok := e.highSeasonMonths[d.Month()]
	return ok
}

func (e *Engine) isHolidaySeason(d time.Time) bool {
	_, ok := e.holidaySeasonMonths[d.Month()]
	return ok
}

// discountFor returns the length-of-stay tier for the given night
// count, applied to subtotal.
func discountFor(nights int, subtotal decimal.Decimal) Discount {
	var percent int64
	var reason string
	switch {
	case nights >= 30:
		percent, reason = 15, "הנחת שהות ארוכה (חודש)"
	case nights >= 14:
		percent, reason = 12, "הנחת שהות ארוכה (שבועיים)"
	case nights >= 7:
		percent, reason = 10, "הנחת שהות ארוכה (שבוע)"
	case nights >= 4:
		percent, reason = 5, "הנחת שהות ארוכה (4+ לילות)"
	default:
		return Discount{Percent: decimal.Zero, Amount: decimal.Zero}
	}
	pct := decimal.NewFromInt(percent)
	amount := subtotal.Mul(pct).Div(oneHundred).Round(2)
	return Discount{Percent: pct, Amount: amount, Reason: reason}
}

// Quote prices the stay [checkIn, checkOut) for the given cabin. A
// zero-night range yields an all-zero breakdown.
func (e *Engine) Quote(cabin *models.Cabin, checkIn, checkOut time.Time, addons []Addon, applyDiscounts bool) *Breakdown {
	base := cabin.BasePricePerNight
	weekend := cabin.WeekendPrice
	if weekend.IsZero() {
		weekend = base
	}

	nights := dates.Nights(checkIn, checkOut)
	b := &Breakdown{
		Nights:              nights,
		BaseTotal:           decimal.Zero,
		WeekendSurcharge:    decimal.Zero,
		HolidaySurcharge:    decimal.Zero,
		HighSeasonSurcharge: decimal.Zero,
		AddonsTotal:         decimal.Zero,
		Subtotal:            decimal.Zero,
		Discount:            Discount{Percent: decimal.Zero, Amount: decimal.Zero},
		Total:               decimal.Zero,
	}
	if nights == 0 {
		return b
	}

	start := dates.Midnight(checkIn)
	for i := 0; i < nights; i++ {
		d := start.AddDate(0, 0, i)
		isWeekend := e.IsWeekend(d)
		isHoliday := e.IsHoliday(d)
		isHighSeason := e.isHighSeason(d)

		dayPrice := base

		if isWeekend {
			b.WeekendNights++
			if weekend.GreaterThan(base) {
				b.WeekendSurcharge = b.WeekendSurcharge.Add(weekend.Sub(base))
				dayPrice = weekend
			}
		} else {
			b.RegularNights++
		}

		// Holiday surcharge is half the base rate and trumps the
		// seasonal uplifts.
		switch {
		case isHoliday:
			b.HolidayNights++
			s := base.Mul(half)
			b.HolidaySurcharge = b.HolidaySurcharge.Add(s)
			dayPrice = dayPrice.Add(s)
		case isHighSeason:
			b.HighSeasonNights++
			s := base.Mul(fifth)
			b.HighSeasonSurcharge = b.HighSeasonSurcharge.Add(s)
			dayPrice = dayPrice.Add(s)
		case e.isHolidaySeason(d):
			s := base.Mul(threeTen)
			b.HighSeasonSurcharge = b.HighSeasonSurcharge.Add(s)
			dayPrice = dayPrice.Add(s)
		}

		b.BaseTotal = b.BaseTotal.Add(dayPrice)
		b.Days = append(b.Days, DayCharge{
			Date:       d.Format(dates.ISO),
			Weekend:    isWeekend,
			Holiday:    isHoliday,
			HighSeason: isHighSeason,
			Price:      dayPrice.Round(2),
		})
	}

	for _, a := range addons {
		b.AddonsTotal = b.AddonsTotal.Add(a.Price)
		b.Addons = append(b.Addons, a)
	}

	b.Subtotal = b.BaseTotal.Add(b.AddonsTotal)
	if applyDiscounts {
		b.Discount = discountFor(nights, b.Subtotal)
	}
	b.Total = b.Subtotal.Sub(b.Discount.Amount).Round(2)

	b.BaseTotal = b.BaseTotal.Round(2)
	b.WeekendSurcharge = b.WeekendSurcharge.Round(2)
	b.HolidaySurcharge = b.HolidaySurcharge.Round(2)
	b.HighSeasonSurcharge = b.HighSeasonSurcharge.Round(2)
	b.AddonsTotal = b.AddonsTotal.Round(2)
	b.Subtotal = b.Subtotal.Round(2)
	return b
}
