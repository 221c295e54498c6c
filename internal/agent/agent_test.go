package agent

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimmerbot/internal/models"
	"zimmerbot/internal/pricing"
)

func TestContextMetadataRoundTrip(t *testing.T) {
	tc := &Context{
		CabinID:   "ZB01",
		CheckIn:   "2026-03-15",
		CheckOut:  "2026-03-17",
		LastQuote: map[string]any{"total": "1500"},
	}

	md := models.JSONMap{"context": tc.metadata()}
	got := contextFromMetadata(md)

	assert.Equal(t, tc.CabinID, got.CabinID)
	assert.Equal(t, tc.CheckIn, got.CheckIn)
	assert.Equal(t, tc.CheckOut, got.CheckOut)
	assert.Equal(t, "1500", got.LastQuote["total"])
}

func TestContextFromEmptyMetadata(t *testing.T) {
	got := contextFromMetadata(models.JSONMap{})
	assert.Equal(t, &Context{}, got)

	got = contextFromMetadata(models.JSONMap{"context": "not a map"})
	assert.Equal(t, &Context{}, got)
}

func TestImageURLs(t *testing.T) {
	c := &models.Cabin{
		ShortCode: "ZB01",
		ImageRefs: models.StringSlice{"front.jpg", "/jacuzzi.jpg", "https://cdn.example.com/pool.jpg"},
	}
	urls := imageURLs(c)
	require.Len(t, urls, 3)
	assert.Equal(t, "/images/ZB01/front.jpg", urls[0])
	assert.Equal(t, "/images/ZB01/jacuzzi.jpg", urls[1])
	assert.Equal(t, "https://cdn.example.com/pool.jpg", urls[2])
}

func TestDynamicIntentHint(t *testing.T) {
	assert.Equal(t, IntentListCabins, dynamicIntentHint("אילו צימרים יש?", "רשימת הצימרים שלנו: ..."))
	assert.Equal(t, IntentAvailability, dynamicIntentHint("מה פנוי?", "בדקו זמינות באתר"))
	assert.Equal(t, "", dynamicIntentHint("מה שעת הצ'ק אין?", "כניסה מ-15:00"))
}

func TestMatchFactKey(t *testing.T) {
	assert.Equal(t, "check_in_time", matchFactKey("מה שעת כניסה?"))
	assert.Equal(t, "pet_policy", matchFactKey("אפשר להביא כלב?"))
	assert.Equal(t, "wifi", matchFactKey("יש WIFI בצימר?"))
	assert.Equal(t, "cancellation_policy", matchFactKey("מה מדיניות ביטול?"))
	assert.Equal(t, "", matchFactKey("מה נשמע?"))
}

func TestListCabinsReply(t *testing.T) {
	reply := listCabinsReply([]models.Cabin{
		{ShortCode: "ZB01", Name: "יולי", Area: "צפון"},
		{ShortCode: "ZB02", Name: "אמי", Area: "גליל"},
	})
	assert.Contains(t, reply, "יולי (ZB01) - צפון")
	assert.Contains(t, reply, "אמי (ZB02) - גליל")

	assert.Equal(t, "לא נמצאו צימרים.", listCabinsReply(nil))
}

func TestCabinInfoReply(t *testing.T) {
	c := &models.Cabin{
		ShortCode: "ZB01",
		Name:      "יולי",
		Area:      "צפון",
		MaxAdults: 2,
		MaxKids:   2,
		Features:  models.NewFeatureSet("ג'קוזי", "בריכה"),
	}
	reply := cabinInfoReply(c, []string{"/images/ZB01/front.jpg"})
	assert.Contains(t, reply, "יולי")
	assert.Contains(t, reply, "מספר: ZB01")
	assert.Contains(t, reply, "ג'קוזי")
	assert.Contains(t, reply, "עד 2 מבוגרים")
	assert.Contains(t, reply, "/images/ZB01/front.jpg")

	noImages := cabinInfoReply(c, nil)
	assert.Contains(t, noImages, "אין תמונות זמינות")
}

func TestLocationReply(t *testing.T) {
	street, city := "דרך ההר 5", "צפת"
	c := &models.Cabin{Name: "מורן", Street: &street, City: &city}

	reply := locationReply(c)
	assert.Contains(t, reply, "דרך ההר 5, צפת")
	assert.Contains(t, reply, "google.com/maps")
	assert.Contains(t, reply, "waze.com")

	assert.Contains(t, locationReply(&models.Cabin{Name: "ריק"}), "לא מצאתי כתובת")
}

func TestAvailabilityReply(t *testing.T) {
	options := []availabilityOption{
		{Cabin: models.Cabin{ShortCode: "ZB01", Name: "יולי", Area: "צפון"}, Total: "1500", Nights: 3},
	}
	reply := availabilityReply(options)
	assert.Contains(t, reply, "מצאתי 1 צימרים")
	assert.Contains(t, reply, "1500₪ ל-3 לילות")

	assert.Contains(t, availabilityReply(nil), "לא מצאתי צימרים זמינים")
}

func TestQuoteReply(t *testing.T) {
	b := &pricing.Breakdown{
		Nights: 2,
		Total:  decimal.NewFromInt(1150),
		Days: []pricing.DayCharge{
			{Date: "2026-03-12", Price: decimal.NewFromInt(500)},
			{Date: "2026-03-13", Price: decimal.NewFromInt(650)},
		},
	}
	reply := quoteReply("יולי", b)
	assert.Contains(t, reply, "הצעת מחיר ל-יולי")
	assert.Contains(t, reply, "2 לילות")
	assert.Contains(t, reply, "1150₪")
	assert.Contains(t, reply, "2026-03-12: 500₪")
	assert.Contains(t, reply, "האם תרצה להזמין?")
}

func TestHoldReply(t *testing.T) {
	h := &models.Hold{
		ID:        uuid.NewString(),
		ExpiresAt: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
	}
	reply := holdReply(h)
	assert.Contains(t, reply, h.ID)
	assert.Contains(t, reply, "14:30 10/03/2026")
}

func TestFreeDaysReply(t *testing.T) {
	c := &models.Cabin{Name: "יולי"}
	free := []time.Time{
		time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC),
	}
	reply := freeDaysReply(c, time.July, 2026, free)
	assert.Contains(t, reply, "3, 4")

	assert.Contains(t, freeDaysReply(c, time.July, 2026, nil), "תפוס לגמרי")
}

func TestShortIDTruncates(t *testing.T) {
	assert.Equal(t, "12345678...", shortID("1234567890ab"))
	assert.Equal(t, "abc", shortID("abc"))
}
