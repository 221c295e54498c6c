// Package payment integrates the card payment provider: intents,
// refunds, and webhook signature verification.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"zimmerbot/internal/models"
)

// ErrNotConfigured is returned when no provider key is set; payment
// features are optional and the rest of the system runs without them.
var ErrNotConfigured = errors.New("payment: provider not configured")

const defaultBaseURL = "https://api.stripe.com/v1"

var agorotFactor = decimal.NewFromInt(100)

// Intent is a provider payment intent. Amount is in agorot.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Refund is the provider's refund result, amount back in whole ILS.
type Refund struct {
	ID       string          `json:"refundId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

// Gateway is a thin client over the provider's REST API.
type Gateway struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	http          *http.Client
	now           func() time.Time
}

// New builds a Gateway. An empty secretKey yields a disabled gateway
// whose operations return ErrNotConfigured.
func New(secretKey, webhookSecret string) *Gateway {
	return &Gateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       defaultBaseURL,
		http:          &http.Client{Timeout: 10 * time.Second},
		now:           time.Now,
	}
}

// Enabled reports whether the provider key is configured.
func (g *Gateway) Enabled() bool { return g.secretKey != "" }

// ToAgorot converts a whole-ILS amount to the provider's smallest
// currency unit.
func ToAgorot(amount decimal.Decimal) int64 {
	return amount.Mul(agorotFactor).Round(0).IntPart()
}

// FromAgorot converts back to whole ILS.
func FromAgorot(agorot int64) decimal.Decimal {
	return decimal.NewFromInt(agorot).Div(agorotFactor)
}

func (g *Gateway) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payment: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("payment: provider status %d: %s", resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("payment: decode response: %w", err)
		}
	}
	return nil
}

// CreateIntent opens a payment intent for the given whole-ILS amount.
func (g *Gateway) CreateIntent(ctx context.Context, amount decimal.Decimal, description string, metadata map[string]string) (*Intent, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(ToAgorot(amount), 10))
	form.Set("currency", strings.ToLower(models.DefaultCurrency))
	form.Set("description", description)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var intent Intent
	if err := g.post(ctx, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetIntent retrieves an intent by id.
func (g *Gateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/payment_intents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: provider unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment: provider status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("payment: decode response: %w", err)
	}
	return &intent, nil
}

// CreateRefund refunds an intent. A nil amount refunds in full.
func (g *Gateway) CreateRefund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal, reason string) (*Refund, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}
	if reason == "" {
		reason = "requested_by_customer"
	}

	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	form.Set("reason", reason)
	if amount != nil {
		form.Set("amount", strconv.FormatInt(ToAgorot(*amount), 10))
	}

	var raw struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := g.post(ctx, "/refunds", form, &raw); err != nil {
		return nil, err
	}
	return &Refund{
		ID:       raw.ID,
		Amount:   FromAgorot(raw.Amount),
		Currency: raw.Currency,
		Status:   raw.Status,
	}, nil
}
