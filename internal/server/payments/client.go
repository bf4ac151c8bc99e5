package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dodopayments/dodopayments-go"
	"github.com/dodopayments/dodopayments-go/option"
)

// Billing is the address the provider requires on subscription creation.
type Billing struct {
	City    string
	Country string
	State   string
	Street  string
	Zipcode string
}

// DefaultBilling is sent when the customer has not supplied an address; the
// hosted payment page collects the real one.
var DefaultBilling = Billing{City: "San Francisco", Country: "US", State: "CA", Street: "123 Main St", Zipcode: "94102"}

type Customer struct {
	Email string
	Name  string
}

type CheckoutRequest struct {
	ProductID   string
	Quantity    int
	Customer    Customer
	Billing     Billing
	PaymentLink bool
	ReturnURL   string
	Metadata    Metadata
}

type Checkout struct {
	SubscriptionID string
	PaymentLink    string
}

// APIError is a non-2xx answer of the provider API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payments api: %d %s", e.Status, e.Body)
}

// Client is the subset of the provider's API the server uses.
type Client struct {
	sdk    *dodopayments.Client
	apiKey string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		sdk: dodopayments.NewClient(
			option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
			option.WithBearerToken(apiKey),
			option.WithRequestTimeout(30*time.Second),
			option.WithMaxRetries(1),
		),
		apiKey: apiKey,
	}
}

// CreateSubscription starts a subscription and, with PaymentLink set,
// returns the hosted checkout link.
func (c *Client) CreateSubscription(ctx context.Context, in CheckoutRequest) (*Checkout, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("payments api key is not configured")
	}

	params := dodopayments.SubscriptionNewParams{
		ProductID: dodopayments.F(in.ProductID),
		Quantity:  dodopayments.F(int64(in.Quantity)),
		Customer: dodopayments.F[dodopayments.CustomerRequestUnionParam](dodopayments.NewCustomerParam{
			Email: dodopayments.F(in.Customer.Email),
			Name:  dodopayments.F(in.Customer.Name),
		}),
		Billing: dodopayments.F(dodopayments.BillingAddressParam{
			City:    dodopayments.F(in.Billing.City),
			Country: dodopayments.F(dodopayments.CountryCode(in.Billing.Country)),
			State:   dodopayments.F(in.Billing.State),
			Street:  dodopayments.F(in.Billing.Street),
			Zipcode: dodopayments.F(in.Billing.Zipcode),
		}),
		PaymentLink: dodopayments.F(in.PaymentLink),
		Metadata:    dodopayments.F(in.Metadata.values()),
	}
	if in.ReturnURL != "" {
		params.ReturnURL = dodopayments.F(in.ReturnURL)
	}

	out, err := c.sdk.Subscriptions.New(ctx, params)
	if err != nil {
		var apiErr *dodopayments.Error
		if errors.As(err, &apiErr) {
			return nil, &APIError{Status: apiErr.StatusCode, Body: strings.TrimSpace(apiErr.RawJSON())}
		}
		return nil, fmt.Errorf("subscription request: %w", err)
	}
	if out.PaymentLink == "" {
		return nil, fmt.Errorf("provider returned no payment link for subscription %q", out.SubscriptionID)
	}
	return &Checkout{SubscriptionID: out.SubscriptionID, PaymentLink: out.PaymentLink}, nil
}

// values flattens m into the provider's string metadata, leaving out empty
// fields.
func (m Metadata) values() map[string]string {
	out := make(map[string]string, 3)
	for k, v := range map[string]string{"userId": m.UserID, "userEmail": m.UserEmail, "planType": m.PlanType} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
