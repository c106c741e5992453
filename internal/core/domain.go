package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Expense    TransactionType = "EXPENSE"
	Deposit    TransactionType = "DEPOSIT"
	Investment TransactionType = "INVESTMENT"
)

const (
	BankTransfer PaymentMethod = "BANK_TRANSFER"
	BankSlip     PaymentMethod = "BANK_SLIP"
	Cash         PaymentMethod = "CASH"
	CreditCard   PaymentMethod = "CREDIT_CARD"
	DebitCard    PaymentMethod = "DEBIT_CARD"
	OtherMethod  PaymentMethod = "OTHER"
	Pix          PaymentMethod = "PIX"
)

const maxNameLength = 200

type (
	TransactionType string

	PaymentMethod string

	Transaction struct {
		ID            string          `json:"id"`
		OwnerID       string          `json:"ownerId"`
		Name          string          `json:"name"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		Category      string          `json:"category"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Date          time.Time       `json:"date"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}

	// TransactionInput is the client-supplied payload of an upsert. The owner
	// never comes from here.
	TransactionInput struct {
		ID            string          `json:"id,omitempty"`
		Name          string          `json:"name"`
		Amount        decimal.Decimal `json:"amount"`
		Type          TransactionType `json:"type"`
		Category      string          `json:"category"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Date          time.Time       `json:"date"`
	}
)

// TransactionTypes returns the fixed type enumeration in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{Expense, Deposit, Investment}
}

// PaymentMethods returns the fixed payment method enumeration.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{BankTransfer, BankSlip, Cash, CreditCard, DebitCard, OtherMethod, Pix}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Expense, Deposit, Investment:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case BankTransfer, BankSlip, Cash, CreditCard, DebitCard, OtherMethod, Pix:
		return true
	default:
		return false
	}
}

// Normalize trims the name and rounds the amount to cents.
func (in TransactionInput) Normalize() TransactionInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Amount = RoundAmount(in.Amount)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// Validate checks a normalized input.
func (in TransactionInput) Validate() error {
	if in.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return NewValidationError("name", "too long (max 200 characters)")
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	if !in.Type.IsValid() {
		return NewValidationError("type", "must be one of EXPENSE, DEPOSIT, INVESTMENT")
	}
	if !IsKnownCategory(in.Category) {
		return NewValidationError("category", "must be a standard category or start with "+CustomCategoryPrefix)
	}
	if !in.PaymentMethod.IsValid() {
		return NewValidationError("paymentMethod", "unknown payment method")
	}
	if in.Date.IsZero() {
		return NewValidationError("date", "must be a valid date")
	}
	return nil
}

// Apply copies the input fields onto t, leaving identity and ownership untouched.
func (in TransactionInput) Apply(t Transaction) Transaction {
	t.Name = in.Name
	t.Amount = in.Amount
	t.Type = in.Type
	t.Category = in.Category
	t.PaymentMethod = in.PaymentMethod
	t.Date = in.Date
	return t
}
