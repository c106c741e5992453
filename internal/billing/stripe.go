// Package billing opens checkout sessions and verifies and decodes payment
// processor webhook events.
package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"fintrack/internal/core"
)

// OwnerMetadataKey is the metadata key carrying the owner id on checkout
// line items and subscriptions.
const OwnerMetadataKey = "user_id"

// DefaultTolerance is how old a signed payload may be.
const DefaultTolerance = 5 * time.Minute

// StripeVerifier checks webhook signatures and maps Stripe events to
// core.BillingEvent.
type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret, tolerance: DefaultTolerance}
}

// ParseEvent verifies the Stripe-Signature header against payload and
// decodes the event. Events other than invoice.paid and
// customer.subscription.deleted are returned with only ID and Type set.
func (v *StripeVerifier) ParseEvent(payload []byte, signature string) (core.BillingEvent, error) {
	if v.secret == "" || signature == "" {
		return core.BillingEvent{}, core.ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return core.BillingEvent{}, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	out := core.BillingEvent{ID: event.ID, Type: core.BillingEventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case core.BillingInvoicePaid:
		var inv invoiceObject
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return out, core.NewValidationError("payload", "malformed invoice")
		}
		out.CustomerID = objectID(inv.Customer)
		out.SubscriptionID = objectID(inv.Subscription)
		if out.SubscriptionID == "" && inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
			out.SubscriptionID = objectID(inv.Parent.SubscriptionDetails.Subscription)
		}
		if len(inv.Lines.Data) > 0 {
			out.OwnerID = inv.Lines.Data[0].Metadata[OwnerMetadataKey]
		}
		if out.OwnerID == "" && inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
			out.OwnerID = inv.Parent.SubscriptionDetails.Metadata[OwnerMetadataKey]
		}
	case core.BillingSubscriptionDeleted:
		var sub subscriptionObject
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, core.NewValidationError("payload", "malformed subscription")
		}
		out.OwnerID = sub.Metadata[OwnerMetadataKey]
		out.CustomerID = objectID(sub.Customer)
		out.SubscriptionID = sub.ID
	}
	return out, nil
}

type invoiceObject struct {
	Customer     json.RawMessage `json:"customer"`
	Subscription json.RawMessage `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription json.RawMessage   `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
	Lines struct {
		Data []struct {
			Metadata map[string]string `json:"metadata"`
		} `json:"data"`
	} `json:"lines"`
}

type subscriptionObject struct {
	ID       string            `json:"id"`
	Customer json.RawMessage   `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}

// objectID reads a Stripe reference that is either an id string or an
// expanded object with an "id" field.
func objectID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}
