// Package email sends guest-facing mails over SMTP. Every send is
// best-effort: failures are logged and never fail the calling flow.
package email

import (
	"fmt"
	"mime"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"zimmerbot/internal/config"
)

// Mailer sends HTML mail through the configured SMTP relay.
type Mailer struct {
	cfg config.SMTPConfig

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Send delivers one HTML message. Returns false when the relay is not
// configured or delivery failed; it never returns an error because no
// caller treats mail as critical.
func (m *Mailer) Send(to, subject, htmlBody string) bool {
	if !m.cfg.Configured() {
		log.Debug().Str("to", to).Str("subject", subject).Msg("smtp not configured, skipping email")
		return false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.From, []string{to}, []byte(b.String())); err != nil {
		log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
		return false
	}
	log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return true
}

// MapLinks renders Google Maps and Waze links for a cabin address.
func MapLinks(address string) (mapsURL, wazeURL string) {
	if address == "" {
		return "", ""
	}
	q := url.QueryEscape(address)
	return "https://www.google.com/maps/search/?api=1&query=" + q,
		"https://waze.com/ul?q=" + q + "&navigate=yes"
}

// BookingConfirmation carries everything the confirmation mail shows.
type BookingConfirmation struct {
	CustomerName string
	BookingID    string
	CabinName    string
	CabinArea    string
	CheckIn      string
	CheckOut     string
	Adults       int
	Kids         int
	TotalPrice   decimal.Decimal
	EventLink    string
	CabinAddress string
}

// SendBookingConfirmation mails the Hebrew booking summary.
func (m *Mailer) SendBookingConfirmation(to string, c BookingConfirmation) bool {
	shortID := c.BookingID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	var maps strings.Builder
	if c.CabinAddress != "" {
		mapsURL, wazeURL := MapLinks(c.CabinAddress)
		fmt.Fprintf(&maps, `<div class="info-box"><h3>מיקום הצימר</h3><p><strong>כתובת:</strong> %s</p>`, c.CabinAddress)
		fmt.Fprintf(&maps, `<p><a href="%s">פתח ב-Google Maps</a> | <a href="%s">פתח ב-Waze</a></p></div>`, mapsURL, wazeURL)
	}

	eventLine := ""
	if c.EventLink != "" {
		eventLine = fmt.Sprintf(`<p><a href="%s">פתח ביומן</a></p>`, c.EventLink)
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html dir="rtl" lang="he">
<head><meta charset="UTF-8">%s</head>
<body><div class="container">
<div class="header"><h1>הזמנתך אושרה!</h1></div>
<div class="content">
<p>שלום %s,</p>
<p>הזמנתך התקבלה בהצלחה! להלן פרטי ההזמנה:</p>
<div class="info-box">
<h3>פרטי ההזמנה</h3>
<p><strong>מספר הזמנה:</strong> %s...</p>
<p><strong>צימר:</strong> %s</p>
<p><strong>אזור:</strong> %s</p>
<p><strong>Check-in:</strong> %s</p>
<p><strong>Check-out:</strong> %s</p>
<p><strong>מבוגרים:</strong> %d</p>
<p><strong>ילדים:</strong> %d</p>
<p class="price">סכום כולל: %s ILS</p>
</div>
%s
%s
<p>נשמח לראותך!</p>
<p>צוות ZimmerBot</p>
</div></div></body></html>`,
		emailStyle, c.CustomerName, shortID, c.CabinName, c.CabinArea,
		c.CheckIn, c.CheckOut, c.Adults, c.Kids, c.TotalPrice.StringFixed(2),
		maps.String(), eventLine)

	return m.Send(to, "אישור הזמנה - "+c.CabinName, body)
}

// PaymentReceipt carries the receipt mail fields.
type PaymentReceipt struct {
	CustomerName  string
	BookingID     string
	CabinName     string
	Amount        decimal.Decimal
	PaymentMethod string
	TransactionID string
}

// SendPaymentReceipt mails the Hebrew payment receipt.
func (m *Mailer) SendPaymentReceipt(to string, r PaymentReceipt) bool {
	shortID := r.BookingID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	txLine := ""
	if r.TransactionID != "" {
		txLine = fmt.Sprintf("<p><strong>מספר עסקה:</strong> %s</p>", r.TransactionID)
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html dir="rtl" lang="he">
<head><meta charset="UTF-8">%s</head>
<body><div class="container">
<div class="header"><h1>קבלת תשלום</h1></div>
<div class="content">
<p>שלום %s,</p>
<p>התשלום עבור הזמנתך התקבל בהצלחה.</p>
<div class="info-box">
<p><strong>מספר הזמנה:</strong> %s...</p>
<p><strong>צימר:</strong> %s</p>
<p><strong>אמצעי תשלום:</strong> %s</p>
%s
<p class="price">סכום ששולם: %s ILS</p>
</div>
<p>תודה, צוות ZimmerBot</p>
</div></div></body></html>`,
		emailStyle, r.CustomerName, shortID, r.CabinName,
		r.PaymentMethod, txLine, r.Amount.StringFixed(2))

	return m.Send(to, "קבלת תשלום - "+r.CabinName, body)
}

const emailStyle = `<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #4caf50; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
.content { background: #f9f9f9; padding: 20px; border-radius: 0 0 8px 8px; }
.info-box { background: white; padding: 15px; margin: 10px 0; border-radius: 5px; border-right: 4px solid #4caf50; }
.price { font-size: 24px; color: #4caf50; font-weight: bold; }
</style>`
