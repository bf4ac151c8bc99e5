// Package payments talks to the subscription billing provider: it verifies
// signed webhook deliveries and creates checkout sessions.
package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	secretPrefix = "whsec_"
)

// Event types delivered by the provider.
const (
	EventSubscriptionActive    = "subscription.active"
	EventSubscriptionRenewed   = "subscription.renewed"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionFailed    = "subscription.failed"
	EventSubscriptionOnHold    = "subscription.on_hold"
	EventPaymentSucceeded      = "payment.succeeded"
	EventPaymentFailed         = "payment.failed"
)

// Metadata is echoed back on every event of a checkout created by us.
type Metadata struct {
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	PlanType  string `json:"planType,omitempty"`
}

type EventData struct {
	SubscriptionID string   `json:"subscription_id,omitempty"`
	PaymentID      string   `json:"payment_id,omitempty"`
	TotalAmount    int64    `json:"total_amount,omitempty"`
	Metadata       Metadata `json:"metadata"`
}

type Event struct {
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp,omitempty"`
	Data      EventData `json:"data"`
}

// Verifier checks standard-webhooks signatures. The library enforces a
// fixed timestamp window, so the configured tolerance is applied here and
// the library only compares signatures.
type Verifier struct {
	wh        *standardwebhooks.Webhook
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier decodes secret, which may carry the whsec_ prefix.
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	if strings.TrimPrefix(secret, secretPrefix) == "" {
		return nil, errors.New("webhook secret is empty")
	}
	wh, err := standardwebhooks.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{wh: wh, tolerance: tolerance, now: time.Now}, nil
}

// Verify authenticates body against the delivery headers. Every failure
// unwraps to common.ErrWebhookValidation.
func (v *Verifier) Verify(h http.Header, body []byte) error {
	if h.Get(HeaderID) == "" || h.Get(HeaderTimestamp) == "" || h.Get(HeaderSignature) == "" {
		return fmt.Errorf("%w: missing headers", common.ErrWebhookValidation)
	}

	sec, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", common.ErrWebhookValidation)
	}
	sent := time.Unix(sec, 0)
	now := v.now()
	if now.Sub(sent) > v.tolerance || sent.Sub(now) > v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", common.ErrWebhookValidation)
	}

	if err := v.wh.VerifyIgnoringTimestamp(body, h); err != nil {
		return fmt.Errorf("%w: %w", common.ErrWebhookValidation, err)
	}
	return nil
}

// Sign returns a signature header value for the given delivery. Used by
// tests and local tooling that replays events.
func (v *Verifier) Sign(id string, ts time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, ts, body)
}

// ParseEvent decodes a verified webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %w", common.ErrWebhookValidation, err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("%w: event type missing", common.ErrWebhookValidation)
	}
	return &e, nil
}
