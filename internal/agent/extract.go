package agent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is an extracted stay interval, ISO date strings. Month
// ranges span the first to the last day of the named month.
type DateRange struct {
	CheckIn      string
	CheckOut     string
	IsMonthRange bool
	Month        time.Month
	Year         int
}

const isoDate = "2006-01-02"

const hebrewMonthAlt = `ינואר|פברואר|מרץ|מרס|מארס|אפריל|מאי|יוני|יולי|אוגוסט|ספטמבר|אוקטובר|נובמבר|דצמבר`

var hebrewMonths = map[string]time.Month{
	"ינואר": time.January, "פברואר": time.February,
	"מרץ": time.March, "מרס": time.March, "מארס": time.March,
	"אפריל": time.April, "מאי": time.May, "יוני": time.June,
	"יולי": time.July, "אוגוסט": time.August, "ספטמבר": time.September,
	"אוקטובר": time.October, "נובמבר": time.November, "דצמבר": time.December,
}

var (
	monthRangeRes = []*regexp.Regexp{
		regexp.MustCompile(`כל\s+(` + hebrewMonthAlt + `)(?:\s+(\d{4}))?`),
		regexp.MustCompile(`במהלך\s+(` + hebrewMonthAlt + `)(?:\s+(\d{4}))?`),
		regexp.MustCompile(`בחודש\s+(` + hebrewMonthAlt + `)(?:\s+(\d{4}))?`),
		regexp.MustCompile(`(` + hebrewMonthAlt + `)\s+כולו(?:\s+(\d{4}))?`),
	}
	// "15-17 במרץ" or "15-17 למרץ 2026"
	hebrewRangeRe = regexp.MustCompile(`(\d{1,2})[-\s]+(\d{1,2})\s+(?:ב|ל)?(` + hebrewMonthAlt + `)(?:\s+(\d{4}))?`)
	// "15.3", "15.3.26", "15.03.2026" (day.month[.year])
	dottedDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?`)
	// "15/03/2026" or "15-03-2026"
	slashDateRe = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
)

// pivotYear expands two-digit years: 00-49 are 2000s, 50-99 are 1900s.
func pivotYear(y int) int {
	if y >= 100 {
		return y
	}
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// validDate rejects day/month combinations the calendar does not have
// (time.Date silently normalizes them instead of failing).
func validDate(year int, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// ExtractDates pulls a stay range out of free text. now supplies the
// default year for patterns that omit one. Returns nil when the
// message carries no recognizable dates.
func ExtractDates(message string, now time.Time) *DateRange {
	lower := strings.ToLower(message)
	currentYear := now.Year()

	// Whole-month phrases: "כל מרץ", "במהלך מרץ", "בחודש מרץ 2026".
	for _, re := range monthRangeRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		month := hebrewMonths[m[1]]
		year := currentYear
		if m[2] != "" {
			year = atoi(m[2])
		}
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return &DateRange{
			CheckIn:      first.Format(isoDate),
			CheckOut:     last.Format(isoDate),
			IsMonthRange: true,
			Month:        month,
			Year:         year,
		}
	}

	// "15-17 במרץ": a day range within one Hebrew month.
	if m := hebrewRangeRe.FindStringSubmatch(lower); m != nil {
		month := hebrewMonths[m[3]]
		year := currentYear
		if m[4] != "" {
			year = atoi(m[4])
		}
		in, okIn := validDate(year, int(month), atoi(m[1]))
		out, okOut := validDate(year, int(month), atoi(m[2]))
		if okIn && okOut {
			if out.Before(in) {
				out = out.AddDate(0, 0, 1)
			}
			return &DateRange{CheckIn: in.Format(isoDate), CheckOut: out.Format(isoDate)}
		}
	}

	// Dotted day.month[.year], one date or a pair.
	if matches := dottedDateRe.FindAllStringSubmatch(message, -1); len(matches) >= 2 {
		year1 := currentYear
		if matches[0][3] != "" {
			year1 = pivotYear(atoi(matches[0][3]))
		}
		year2 := year1
		if matches[1][3] != "" {
			year2 = pivotYear(atoi(matches[1][3]))
		}
		in, okIn := validDate(year1, atoi(matches[0][2]), atoi(matches[0][1]))
		out, okOut := validDate(year2, atoi(matches[1][2]), atoi(matches[1][1]))
		if okIn && okOut {
			if !out.After(in) {
				out = out.AddDate(0, 0, 1)
			}
			return &DateRange{CheckIn: in.Format(isoDate), CheckOut: out.Format(isoDate)}
		}
	} else if len(matches) == 1 {
		year := currentYear
		if matches[0][3] != "" {
			year = pivotYear(atoi(matches[0][3]))
		}
		if in, ok := validDate(year, atoi(matches[0][2]), atoi(matches[0][1])); ok {
			return &DateRange{
				CheckIn:  in.Format(isoDate),
				CheckOut: in.AddDate(0, 0, 1).Format(isoDate),
			}
		}
	}

	// Slash-delimited with an explicit four-digit year.
	if matches := slashDateRe.FindAllStringSubmatch(message, -1); len(matches) >= 2 {
		in, okIn := validDate(atoi(matches[0][3]), atoi(matches[0][2]), atoi(matches[0][1]))
		out, okOut := validDate(atoi(matches[1][3]), atoi(matches[1][2]), atoi(matches[1][1]))
		if okIn && okOut {
			if !out.After(in) {
				out = out.AddDate(0, 0, 1)
			}
			return &DateRange{CheckIn: in.Format(isoDate), CheckOut: out.Format(isoDate)}
		}
	}

	return nil
}

var shortCodeRe = regexp.MustCompile(`(?i)\b(ZB\d{2})\b`)

// Name aliases guests use for the cabins.
var cabinAliases = []struct {
	name string
	code string
}{
	{"מורן", "ZB03"},
	{"מורני", "ZB03"},
	{"יולי", "ZB01"},
	{"אמי", "ZB02"},
}

var punctRe = regexp.MustCompile(`[^\pL\pN\s]`)

// ExtractCabin finds a cabin short-code or a known cabin name in the
// message. Returns "" when nothing matches.
func ExtractCabin(message string) string {
	if m := shortCodeRe.FindString(message); m != "" {
		return strings.ToUpper(m)
	}

	clean := punctRe.ReplaceAllString(strings.ToLower(message), " ")
	words := strings.Fields(clean)
	for _, alias := range cabinAliases {
		if isOneOf(alias.name, words) ||
			strings.Contains(clean, "צימר של "+alias.name) ||
			strings.Contains(clean, "צימר "+alias.name) {
			return alias.code
		}
	}
	return ""
}

var nameRes = []*regexp.Regexp{
	regexp.MustCompile(`על\s+שם\s+([\x{05d0}-\x{05ea}\s]+)`),
	regexp.MustCompile(`שם[:\s]+([\x{05d0}-\x{05ea}\s]+)`),
	regexp.MustCompile(`name[:\s]+([a-zA-Z\s]+)`),
}

// ExtractCustomerName looks for "על שם <name>", "שם: <name>" or
// "name: <name>" phrases.
func ExtractCustomerName(message string) string {
	for i, re := range nameRes {
		input := message
		if i == 2 {
			input = strings.ToLower(message)
		}
		m := re.FindStringSubmatch(input)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		// The capture runs to the end of the letter run; cut at the
		// first separator the original patterns stopped at.
		if idx := strings.IndexAny(name, ",.-"); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if len([]rune(name)) > 1 {
			return name
		}
	}
	return ""
}
