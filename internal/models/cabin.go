package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cabin is a stable record per property. ShortCode (e.g. "ZB01") is the
// canonical business-facing identifier; the UUID stays internal.
type Cabin struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	ShortCode         string          `db:"short_code" json:"shortCode"`
	Name              string          `db:"name" json:"name"`
	Area              string          `db:"area" json:"area"`
	MaxAdults         int             `db:"max_adults" json:"maxAdults"`
	MaxKids           int             `db:"max_kids" json:"maxKids"`
	Features          FeatureSet      `db:"features" json:"features"`
	BasePricePerNight decimal.Decimal `db:"base_price_night" json:"basePricePerNight"`
	WeekendPrice      decimal.Decimal `db:"weekend_price" json:"weekendPricePerNight"`
	ImageRefs         StringSlice     `db:"images_urls" json:"imageRefs"`
	CalendarRef       string          `db:"calendar_id" json:"calendarRef"`
	Street            *string         `db:"street" json:"street,omitempty"`
	City              *string         `db:"city" json:"city,omitempty"`
	PostalCode        *string         `db:"postal_code" json:"postalCode,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// Address joins the optional address parts for map links and emails.
func (c *Cabin) Address() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{c.Street, c.City, c.PostalCode} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return joinNonEmpty(parts, ", ")
}

func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

// Customer is deduplicated on non-empty email first, then phone.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      *string   `db:"name" json:"name,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HasIdentity reports whether the record carries at least one of the
// fields required on first insert.
func (c *Customer) HasIdentity() bool {
	for _, p := range []*string{c.Name, c.Email, c.Phone} {
		if p != nil && *p != "" {
			return true
		}
	}
	return false
}
