package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"fintrack/internal/core"
)

// CheckoutConfig names the premium price and where the hosted page
// returns to. Backend is optional and points the client elsewhere in tests.
type CheckoutConfig struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Backend    stripe.Backend
}

// Checkout opens Stripe subscription checkout sessions for the premium plan.
type Checkout struct {
	client session.Client
	cfg    CheckoutConfig
}

func NewCheckout(cfg CheckoutConfig) (*Checkout, error) {
	if cfg.SecretKey == "" || cfg.PriceID == "" {
		return nil, errors.New("stripe secret key and premium price id are required")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, errors.New("checkout success and cancel URLs are required")
	}
	backend := cfg.Backend
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &Checkout{client: session.Client{B: backend, Key: cfg.SecretKey}, cfg: cfg}, nil
}

// CreateCheckoutSession starts a subscription checkout for owner. The owner
// id travels as subscription metadata so invoice.paid can be attributed.
func (c *Checkout) CreateCheckoutSession(ctx context.Context, owner string) (core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(owner),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(c.cfg.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{OwnerMetadataKey: owner},
		},
	}
	params.Context = ctx

	sess, err := c.client.New(params)
	if err != nil {
		return core.CheckoutSession{}, &core.UpstreamError{Service: "stripe", Err: err}
	}
	return core.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
