package core

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// TypeShare is the share of a type in the period's transaction count.
	TypeShare struct {
		Type       TransactionType `json:"type"`
		Percentage decimal.Decimal `json:"percentage"`
	}

	// TypePercentages keeps the fixed EXPENSE, DEPOSIT, INVESTMENT order and
	// encodes as a JSON object in that order.
	TypePercentages []TypeShare

	// CategoryExpense aggregates expenses of one category.
	CategoryExpense struct {
		Category          string          `json:"category"`
		Label             string          `json:"label"`
		TotalAmount       decimal.Decimal `json:"totalAmount"`
		PercentageOfTotal decimal.Decimal `json:"percentageOfTotal"`
	}

	// DashboardSummary is the monthly overview of one owner.
	DashboardSummary struct {
		Year                    int               `json:"year"`
		Month                   int               `json:"month"`
		Balance                 decimal.Decimal   `json:"balance"`
		DepositsTotal           decimal.Decimal   `json:"depositsTotal"`
		ExpensesTotal           decimal.Decimal   `json:"expensesTotal"`
		InvestmentsTotal        decimal.Decimal   `json:"investmentsTotal"`
		TypesPercentage         TypePercentages   `json:"typesPercentage"`
		TotalExpensePerCategory []CategoryExpense `json:"totalExpensePerCategory"`
		LastTransactions        []Transaction     `json:"lastTransactions"`
	}
)

// Get returns the percentage for t, zero when absent.
func (p TypePercentages) Get(t TransactionType) decimal.Decimal {
	for _, s := range p {
		if s.Type == t {
			return s.Percentage
		}
	}
	return decimal.Zero
}

func (p TypePercentages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(s.Type))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.Percentage)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *TypePercentages) UnmarshalJSON(data []byte) error {
	var m map[TransactionType]decimal.Decimal
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(TypePercentages, 0, len(m))
	for _, t := range TransactionTypes() {
		if v, ok := m[t]; ok {
			out = append(out, TypeShare{Type: t, Percentage: v})
		}
	}
	*p = out
	return nil
}

const PlanPremium = "premium"

// Subscription is the billing state of an owner. No row means free tier.
type Subscription struct {
	OwnerID        string    `json:"-"`
	Plan           string    `json:"plan"`
	CustomerID     string    `json:"customerId,omitempty"`
	SubscriptionID string    `json:"subscriptionId,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (s Subscription) IsPremium() bool {
	return s.Plan == PlanPremium
}

// CheckoutSession is a hosted payment page the owner is redirected to.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// BillingEventType enumerates the billing notifications acted upon.
type BillingEventType string

const (
	BillingInvoicePaid         BillingEventType = "invoice.paid"
	BillingSubscriptionDeleted BillingEventType = "customer.subscription.deleted"
)

// BillingEvent is a verified billing notification.
type BillingEvent struct {
	ID             string
	Type           BillingEventType
	OwnerID        string
	CustomerID     string
	SubscriptionID string
}

// Report is the outcome of a report request. Generated is false when the
// content is a fallback message.
type Report struct {
	Content   string `json:"content"`
	Generated bool   `json:"generated"`
}
