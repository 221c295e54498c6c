package agent

import (
	"fmt"
	"strings"
	"time"

	"zimmerbot/internal/email"
	"zimmerbot/internal/models"
	"zimmerbot/internal/pricing"
)

const (
	greetingReply = "שלום! תודה על פנייתך. אני כאן כדי לעזור לך למצוא צימר מתאים. איך אוכל לעזור?"
	fallbackReply = "אשמח לענות על שאלותיך. מה תרצה לדעת?"

	askCabinReply  = "על איזה צימר מדובר? אפשר לציין שם או מספר (למשל ZB01)."
	askDatesReply  = "לאילו תאריכים? אפשר לכתוב למשל 15.3 או 15-17 במרץ."
	maxReplyImages = 3
	maxReplyItems  = 5
)

func listCabinsReply(cabins []models.Cabin) string {
	if len(cabins) == 0 {
		return "לא נמצאו צימרים."
	}
	var b strings.Builder
	b.WriteString("🏡 **רשימת כל הצימרים:**\n\n")
	for _, c := range cabins {
		fmt.Fprintf(&b, "• %s (%s) - %s\n", c.Name, c.ShortCode, c.Area)
	}
	return b.String()
}

func cabinInfoReply(c *models.Cabin, images []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏡 **%s**\n", c.Name)
	fmt.Fprintf(&b, "מספר: %s\n", c.ShortCode)
	if c.Area != "" {
		fmt.Fprintf(&b, "📍 אזור: %s\n", c.Area)
	}
	b.WriteString("\n")

	if tags := c.Features.Tags(); len(tags) > 0 {
		if len(tags) > 10 {
			tags = tags[:10]
		}
		fmt.Fprintf(&b, "✨ תכונות: %s\n\n", strings.Join(tags, ", "))
	}

	if c.MaxAdults > 0 || c.MaxKids > 0 {
		fmt.Fprintf(&b, "👥 אירוח: עד %d מבוגרים", c.MaxAdults)
		if c.MaxKids > 0 {
			fmt.Fprintf(&b, " ו-%d ילדים", c.MaxKids)
		}
		b.WriteString("\n\n")
	}

	if len(images) > 0 {
		b.WriteString("📷 תמונות:\n\n")
		if len(images) > maxReplyImages {
			images = images[:maxReplyImages]
		}
		for _, img := range images {
			fmt.Fprintf(&b, "🖼️ %s\n", img)
		}
	} else {
		b.WriteString("📷 אין תמונות זמינות\n")
	}
	return b.String()
}

func locationReply(c *models.Cabin) string {
	address := c.Address()
	if address == "" {
		return "❌ לא מצאתי כתובת לצימר זה. אנא פנה לבעלים לקבלת פרטים."
	}
	mapsURL, wazeURL := email.MapLinks(address)

	var b strings.Builder
	fmt.Fprintf(&b, "📍 **מיקום הצימר %s:**\n\n", c.Name)
	fmt.Fprintf(&b, "**כתובת:** %s\n\n", address)
	b.WriteString("🗺️ **קישורים למפות:**\n")
	fmt.Fprintf(&b, "• [Google Maps](%s)\n", mapsURL)
	fmt.Fprintf(&b, "• [Waze](%s)\n\n", wazeURL)
	b.WriteString("💡 לחץ על הקישורים כדי לפתוח במפה או באפליקציית הניווט שלך.")
	return b.String()
}

// availabilityOption pairs an available cabin with its price for the
// requested stay.
type availabilityOption struct {
	Cabin  models.Cabin
	Total  string
	Nights int
}

func availabilityReply(options []availabilityOption) string {
	if len(options) == 0 {
		return "❌ לא מצאתי צימרים זמינים בתאריכים שביקשת."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ מצאתי %d צימרים זמינים בתאריכים שביקשת:\n\n", len(options))
	for _, opt := range options {
		c := opt.Cabin
		fmt.Fprintf(&b, "🏡 %s (%s) - %s\n", c.Name, c.ShortCode, c.Area)
		if opt.Total != "" {
			fmt.Fprintf(&b, "💰 מחיר: %s₪ ל-%d לילות\n", opt.Total, opt.Nights)
		}
		if tags := c.Features.Tags(); len(tags) > 0 {
			if len(tags) > 5 {
				tags = tags[:5]
			}
			fmt.Fprintf(&b, "✨ תכונות: %s\n", strings.Join(tags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("איזה צימר מעניין אותך? אני יכול לתת לך הצעת מחיר מפורטת או לעזור להזמין.")
	return b.String()
}

func freeDaysReply(c *models.Cabin, month time.Month, year int, free []time.Time) string {
	if len(free) == 0 {
		return fmt.Sprintf("❌ %s תפוס לגמרי ב-%d/%d.", c.Name, int(month), year)
	}
	days := make([]string, 0, len(free))
	for _, d := range free {
		days = append(days, fmt.Sprintf("%d", d.Day()))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 ימים פנויים ב-%s במהלך %d/%d:\n\n", c.Name, int(month), year)
	fmt.Fprintf(&b, "%s\n\n", strings.Join(days, ", "))
	b.WriteString("איזה תאריכים מתאימים לך?")
	return b.String()
}

func quoteReply(cabinName string, breakdown *pricing.Breakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 הצעת מחיר ל-%s:\n", cabinName)
	fmt.Fprintf(&b, "📅 %d לילות\n", breakdown.Nights)
	fmt.Fprintf(&b, "💵 סה\"כ: %s₪\n\n", breakdown.Total.String())

	if len(breakdown.Days) > 0 {
		b.WriteString("פירוט:\n")
		days := breakdown.Days
		if len(days) > maxReplyItems {
			days = days[:maxReplyItems]
		}
		for _, d := range days {
			fmt.Fprintf(&b, "• %s: %s₪\n", d.Date, d.Price.String())
		}
		b.WriteString("\n")
	}
	if breakdown.Discount.Amount.IsPositive() {
		fmt.Fprintf(&b, "🎁 %s: -%s₪\n\n", breakdown.Discount.Reason, breakdown.Discount.Amount.String())
	}
	b.WriteString("האם תרצה להזמין?")
	return b.String()
}

func holdReply(h *models.Hold) string {
	var b strings.Builder
	b.WriteString("✅ שריינתי לך את הצימר!\n")
	fmt.Fprintf(&b, "🔒 מספר הזמנה: %s\n", h.ID)
	fmt.Fprintf(&b, "⏰ השריון תקף עד %s\n", h.ExpiresAt.Format("15:04 02/01/2006"))
	return b.String()
}

func alreadyHeldReply(expiresAt time.Time) string {
	return fmt.Sprintf("❌ הצימר כבר משוריין כרגע (עד %s). אפשר לנסות שוב מאוחר יותר או לבחור צימר אחר.",
		expiresAt.Format("15:04 02/01/2006"))
}

func bookedReply(b *models.Booking, cabinName, eventLink string) string {
	var sb strings.Builder
	sb.WriteString("🎉 ההזמנה אושרה!\n")
	fmt.Fprintf(&sb, "🏡 %s\n", cabinName)
	fmt.Fprintf(&sb, "📅 %s עד %s\n", b.CheckIn.Format(isoDate), b.CheckOut.Format(isoDate))
	fmt.Fprintf(&sb, "💵 סה\"כ: %s₪\n", b.TotalPrice.String())
	fmt.Fprintf(&sb, "🔖 מספר הזמנה: %s\n", shortID(b.ID.String()))
	if eventLink != "" {
		fmt.Fprintf(&sb, "📆 [קישור ליומן](%s)\n", eventLink)
	}
	return sb.String()
}

func missingReply(needCabin, needDates bool) string {
	switch {
	case needCabin && needDates:
		return "כדי להמשיך אני צריך לדעת על איזה צימר מדובר ולאילו תאריכים. " + askDatesReply
	case needCabin:
		return askCabinReply
	default:
		return askDatesReply
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
