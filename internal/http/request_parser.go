package http

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// MonthParams holds the year and month selected by a request. Zero means
// not given.
type MonthParams struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ParseMonthParams reads the optional year and month query parameters.
// Non-numeric values are a validation error.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	var p MonthParams
	var err error
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if p.Year, err = strconv.Atoi(v); err != nil {
			return MonthParams{}, core.NewValidationError("year", "must be a number")
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if p.Month, err = strconv.Atoi(v); err != nil {
			return MonthParams{}, core.NewValidationError("month", "must be a number")
		}
	}
	return p, nil
}

// OrCurrent fills missing fields with the current year and month in loc.
func (p MonthParams) OrCurrent(loc *time.Location) MonthParams {
	now := time.Now().In(loc)
	if p.Year == 0 {
		p.Year = now.Year()
	}
	if p.Month == 0 {
		p.Month = int(now.Month())
	}
	return p
}

// AmountField holds an amount exactly as sent: a JSON number, or a string
// that may use a decimal comma ("12,50").
type AmountField string

func (a *AmountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountField(s)
	default:
		*a = AmountField(b)
	}
	return nil
}

// TransactionRequest is the JSON body of a transaction upsert.
type TransactionRequest struct {
	ID            string      `json:"id,omitempty"`
	Name          string      `json:"name"`
	Amount        AmountField `json:"amount"`
	Type          string      `json:"type"`
	Category      string      `json:"category"`
	PaymentMethod string      `json:"paymentMethod"`
	Date          string      `json:"date"`
}

// ToInput converts the request into a service input. The path id, when
// present, wins over the body.
func (req TransactionRequest) ToInput(pathID string) (core.TransactionInput, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.TransactionInput{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.TransactionInput{}, err
	}
	id := req.ID
	if pathID != "" {
		id = pathID
	}
	return core.TransactionInput{
		ID:            id,
		Name:          sanitizeInput(req.Name),
		Amount:        amount,
		Type:          core.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Category:      strings.TrimSpace(req.Category),
		PaymentMethod: core.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod))),
		Date:          date,
	}, nil
}

// CategoryRequest is the JSON body of a custom category creation.
type CategoryRequest struct {
	Label string `json:"label"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, core.NewValidationError("date", "must be a valid date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, core.NewValidationError("date", "must be YYYY-MM-DD or RFC 3339")
	}
	return t, nil
}
