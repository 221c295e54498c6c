package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAvailabilityIntent(t *testing.T) {
	det := DetectIntent("יש זמינות ל-15.3?", &Context{})
	assert.Equal(t, IntentAvailability, det.Intent)
	assert.Equal(t, []string{IntentAvailability}, det.Actions)
	assert.GreaterOrEqual(t, det.Confidence, 0.5)
	assert.LessOrEqual(t, det.Confidence, 0.95)
}

func TestDetectQuoteIntent(t *testing.T) {
	det := DetectIntent("כמה עולה לילה בצימר?", &Context{})
	assert.Equal(t, IntentQuote, det.Intent)
}

func TestDetectListCabins(t *testing.T) {
	det := DetectIntent("אפשר לקבל רשימה של כל הצימרים?", &Context{})
	assert.Equal(t, IntentListCabins, det.Intent)
}

func TestDetectGreetingFallback(t *testing.T) {
	det := DetectIntent("אממ", &Context{})
	assert.Equal(t, IntentGreeting, det.Intent)
	assert.Equal(t, 0.5, det.Confidence)
	assert.Empty(t, det.Actions)
}

func TestConfidenceSingleIntentIsCapped(t *testing.T) {
	// One intent takes the whole score mass: 0.5 + 1.0*0.45 = 0.95.
	det := DetectIntent("location", &Context{})
	assert.InDelta(t, 0.95, det.Confidence, 0.0001)
}

func TestBareYesWithQuoteConfirms(t *testing.T) {
	tc := &Context{LastQuote: map[string]any{"total": "1500"}}
	det := DetectIntent("כן", tc)
	assert.Equal(t, IntentConfirm, det.Intent)
	assert.Equal(t, []string{IntentBook}, det.Actions)
	assert.Equal(t, 0.9, det.Confidence)
}

func TestBareYesWithFullContextBooks(t *testing.T) {
	tc := &Context{CabinID: "ZB01", CheckIn: "2026-03-15", CheckOut: "2026-03-17"}
	det := DetectIntent("אוקיי", tc)
	assert.Equal(t, IntentBookNow, det.Intent)
	assert.Equal(t, []string{IntentHold, IntentBook}, det.Actions)
}

func TestBareYesWithoutContextGreets(t *testing.T) {
	det := DetectIntent("כן", &Context{})
	assert.Equal(t, IntentGreeting, det.Intent)
}

func TestPhotoWordWithCachedCabin(t *testing.T) {
	tc := &Context{CabinID: "ZB02"}
	det := DetectIntent("תמונות?", tc)
	assert.Equal(t, IntentCabinInfo, det.Intent)
	assert.Equal(t, 0.9, det.Confidence)
}

func TestBookPhraseWithFullContext(t *testing.T) {
	tc := &Context{CabinID: "ZB03", CheckIn: "2026-03-15", CheckOut: "2026-03-16"}
	det := DetectIntent("יופי, תעשה הזמנה", tc)
	assert.Equal(t, IntentBookNow, det.Intent)
	assert.Equal(t, 0.9, det.Confidence)
}

func TestBareCabinNameIsInfo(t *testing.T) {
	tc := &Context{}
	det := DetectIntent("הצימר של מורן", tc)
	assert.Equal(t, IntentCabinInfo, det.Intent)
	assert.Equal(t, "ZB03", tc.CabinID)
}

func TestCabinNameWithPriceWordIsQuote(t *testing.T) {
	tc := &Context{}
	det := DetectIntent("כמה עולה הצימר של יולי?", tc)
	assert.Equal(t, IntentQuote, det.Intent)
	assert.Equal(t, "ZB01", tc.CabinID)
}

func TestExplicitNameMentionOverridesCachedCabin(t *testing.T) {
	tc := &Context{CabinID: "ZB01"}
	DetectIntent("ומה עם אמי?", tc)
	assert.Equal(t, "ZB02", tc.CabinID)
}

func TestShortCodeDoesNotOverrideCachedCabin(t *testing.T) {
	// A bare short-code in a follow-up keeps the conversation's cabin
	// unless the guest names one explicitly.
	tc := &Context{CabinID: "ZB01"}
	DetectIntent("מה המחיר של ZB02?", tc)
	assert.Equal(t, "ZB01", tc.CabinID)
}
