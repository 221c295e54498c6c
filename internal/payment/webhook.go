package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook event types the reconciliation path cares about.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Signed webhooks older than this are rejected to block replays.
const webhookTolerance = 5 * time.Minute

var (
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrStaleWebhook     = errors.New("payment: webhook timestamp outside tolerance")
)

// Event is a verified provider webhook.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Intent decodes the event payload as a payment intent.
func (e *Event) Intent() (*Intent, error) {
	var intent Intent
	if err := json.Unmarshal(e.Data.Object, &intent); err != nil {
		return nil, fmt.Errorf("payment: decode event object: %w", err)
	}
	return &intent, nil
}

// VerifyWebhook checks the provider's signature header against the raw
// body and returns the decoded event. The header carries a unix
// timestamp and one or more HMAC-SHA256 signatures over
// "<timestamp>.<body>".
func (g *Gateway) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	var ts int64
	var candidates []string
	for _, part := range strings.Split(signatureHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if ts == 0 || len(candidates) == 0 {
		return nil, ErrInvalidSignature
	}

	if d := g.now().Sub(time.Unix(ts, 0)); d > webhookTolerance || d < -webhookTolerance {
		return nil, ErrStaleWebhook
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	valid := false
	for _, c := range candidates {
		if hmac.Equal([]byte(expected), []byte(c)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("payment: decode event: %w", err)
	}
	return &ev, nil
}
