package agent

import "strings"

// dynamicHints mark FAQ entries whose stored answer describes live
// data. Serving the static text would let an old snapshot answer a
// question the catalog or the calendar should answer, so a hit here
// re-routes to the matching intent instead.
var dynamicHints = []struct {
	phrases []string
	intent  string
}{
	{[]string{"רשימת הצימרים", "כל הצימרים", "list of cabins", "רשימה של צימרים"}, IntentListCabins},
	{[]string{"זמינות", "availability", "פנוי", "תאריכים פנויים"}, IntentAvailability},
}

// dynamicIntentHint returns the intent an FAQ entry should be
// re-routed to, or "" when its answer is safe to serve as-is.
func dynamicIntentHint(question, answer string) string {
	text := strings.ToLower(question + " " + answer)
	for _, h := range dynamicHints {
		for _, p := range h.phrases {
			if strings.Contains(text, p) {
				return h.intent
			}
		}
	}
	return ""
}

// factKeywords maps guest phrasings to business-fact keys.
var factKeywords = []struct {
	keywords []string
	factKey  string
}{
	{[]string{"צ'ק אין", "שעת כניסה", "check-in time", "checkin time", "מתי אפשר להיכנס"}, "check_in_time"},
	{[]string{"צ'ק אאוט", "שעת יציאה", "check-out time", "checkout time", "מתי צריך לצאת"}, "check_out_time"},
	{[]string{"ביטול", "לבטל", "cancellation", "מדיניות ביטול"}, "cancellation_policy"},
	{[]string{"חניה", "parking", "איפה חונים"}, "parking"},
	{[]string{"חיות מחמד", "כלב", "חתול", "pets", "בעלי חיים"}, "pet_policy"},
	{[]string{"כשר", "כשרות", "kosher"}, "kosher"},
	{[]string{"wifi", "וויפיי", "אינטרנט", "אינטרנט אלחוטי"}, "wifi"},
	{[]string{"ארוחת בוקר", "breakfast"}, "breakfast"},
	{[]string{"עישון", "לעשן", "smoking"}, "smoking_policy"},
}

// matchFactKey returns the business-fact key the message asks about,
// or "" when none applies.
func matchFactKey(message string) string {
	lower := strings.ToLower(message)
	for _, f := range factKeywords {
		for _, kw := range f.keywords {
			if strings.Contains(lower, kw) {
				return f.factKey
			}
		}
	}
	return ""
}
