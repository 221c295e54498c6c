// Package agent is the conversational layer: it classifies guest
// messages, extracts entities, dispatches tools, and renders fixed
// Hebrew reply templates. All cross-turn state lives in message
// metadata; the agent itself is stateless.
package agent

import "strings"

// Intents the agent can classify a message into.
const (
	IntentAvailability = "availability"
	IntentQuote        = "quote"
	IntentHold         = "hold"
	IntentBook         = "book"
	IntentCabinInfo    = "cabin_info"
	IntentLocation     = "location"
	IntentListCabins   = "list_cabins"
	IntentGreeting     = "greeting"
	IntentConfirm      = "confirm"
	IntentBookNow      = "book_now"
)

// Context is the carry-over map rebuilt from the previous assistant
// turn. DetectIntent may fill CabinID when the message names a cabin.
type Context struct {
	CabinID   string
	CheckIn   string
	CheckOut  string
	LastQuote map[string]any
}

// Detection is the outcome of intent classification.
type Detection struct {
	Intent     string
	Confidence float64
	Actions    []string
}

var intentKeywords = map[string][]string{
	IntentAvailability: {"זמינות", "פנוי", "פנויה", "זמין", "available", "availability", "free", "vacant"},
	IntentQuote:        {"מחיר", "כמה", "עולה", "תמחור", "price", "cost", "quote", "הצעת מחיר"},
	IntentHold:         {"שריין", "הזמנה", "להזמין", "hold", "reserve", "book"},
	IntentBook:         {"אישור", "לאשר", "לסיים", "confirm", "approve", "complete"},
	IntentCabinInfo: {"תמונה", "תמונות", "מידע", "כתובת", "תכונות", "פרטים", "אודות", "מה יש", "מה כולל",
		"image", "info", "address", "features", "details", "about"},
	IntentLocation:   {"מיקום", "איפה", "כתובת", "מפה", "maps", "waze", "גוגל מפות", "וייז", "location", "address", "איך מגיעים"},
	IntentListCabins: {"רשימה", "כל הצימרים", "שמות", "list", "all cabins", "names"},
	IntentGreeting:   {"שלום", "היי", "בוקר", "ערב", "hello", "hi", "hey"},
}

var intentActions = map[string][]string{
	IntentAvailability: {IntentAvailability},
	IntentQuote:        {IntentQuote},
	IntentHold:         {IntentHold},
	IntentBook:         {IntentHold, IntentBook},
	IntentCabinInfo:    {IntentCabinInfo},
	// Location reads the cabin card to get the address.
	IntentLocation:   {IntentCabinInfo},
	IntentListCabins: {IntentListCabins},
	IntentConfirm:    {IntentBook},
	IntentBookNow:    {IntentHold, IntentBook},
}

var (
	priceKeywords = []string{"מחיר", "כמה", "עולה", "תמחור", "price", "cost", "quote"}
	infoKeywords  = []string{"תמונה", "תמונות", "מידע", "כתובת", "תכונות", "פרטים", "אודות", "מה יש", "מה כולל",
		"image", "info", "address", "features", "details", "about"}
	photoPhrases = []string{"תמונה?", "תמונה", "תמונות?", "תמונות", "תמונה של", "תמונות של",
		"אפשר לראות תמונה", "אפשר לראות תמונות"}
	photoKeywords = []string{"תמונה", "תמונות", "לראות תמונה"}
	yesPhrases    = []string{"כן", "אוקיי", "בסדר", "בוא", "בואו", "יאללה", "yes", "ok", "okay"}
	bookPhrases   = []string{"תזמין", "עשה הזמנה", "צור הזמנה", "בוא נזמין", "בואו נזמין", "תעשה הזמנה"}
	aliasMentions = []string{"אמי", "יולי", "מורן", "מורני"}
)

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isOneOf(s string, opts []string) bool {
	for _, o := range opts {
		if s == o {
			return true
		}
	}
	return false
}

// DetectIntent scores each intent by keyword hits and applies the
// context-sensitive overrides for short follow-up messages. When the
// message names a cabin, tc.CabinID is updated in place.
func DetectIntent(message string, tc *Context) Detection {
	lower := strings.ToLower(message)
	if tc == nil {
		tc = &Context{}
	}

	scores := map[string]int{}
	for intent, keywords := range intentKeywords {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		if n > 0 {
			scores[intent] = n
		}
	}

	words := strings.Fields(lower)
	trimmed := strings.TrimSpace(lower)

	// "תמונה?" with a cabin already in context is always a cabin card.
	if isOneOf(trimmed, photoPhrases) || (containsAny(lower, photoKeywords) && len(words) <= 4) {
		if tc.CabinID != "" {
			return Detection{Intent: IntentCabinInfo, Confidence: 0.9, Actions: []string{IntentCabinInfo}}
		}
	}

	// A bare affirmation continues whatever the previous turn set up.
	if isOneOf(trimmed, yesPhrases) {
		if len(tc.LastQuote) > 0 {
			return Detection{Intent: IntentConfirm, Confidence: 0.9, Actions: []string{IntentBook}}
		}
		if tc.CabinID != "" && tc.CheckIn != "" && tc.CheckOut != "" {
			return Detection{Intent: IntentBookNow, Confidence: 0.8, Actions: []string{IntentHold, IntentBook}}
		}
	}

	// Explicit "make the booking" phrasing with full context.
	if containsAny(lower, bookPhrases) && tc.CabinID != "" && tc.CheckIn != "" && tc.CheckOut != "" {
		return Detection{Intent: IntentBookNow, Confidence: 0.9, Actions: []string{IntentHold, IntentBook}}
	}

	// A named cabin with no clear ask is a price or info question.
	cabinOverride := ""
	if extracted := ExtractCabin(message); extracted != "" {
		if tc.CabinID == "" || containsAny(lower, aliasMentions) {
			tc.CabinID = extracted
		}
		if containsAny(lower, priceKeywords) {
			cabinOverride = IntentQuote
		} else if containsAny(lower, infoKeywords) || len(strings.Fields(message)) <= 3 {
			cabinOverride = IntentCabinInfo
		}
	}

	if len(scores) == 0 {
		if cabinOverride != "" {
			return Detection{Intent: cabinOverride, Confidence: 0.8, Actions: intentActions[cabinOverride]}
		}
		return Detection{Intent: IntentGreeting, Confidence: 0.5}
	}

	primary, maxScore, total := "", 0, 0
	for intent, n := range scores {
		total += n
		if n > maxScore || (n == maxScore && intent < primary) {
			primary, maxScore = intent, n
		}
	}
	confidence := 0.5 + float64(maxScore)/float64(total)*0.45
	if confidence > 0.95 {
		confidence = 0.95
	}
	actions := intentActions[primary]

	if cabinOverride != "" && primary != cabinOverride {
		primary, confidence, actions = cabinOverride, 0.8, intentActions[cabinOverride]
	}

	return Detection{Intent: primary, Confidence: confidence, Actions: actions}
}
