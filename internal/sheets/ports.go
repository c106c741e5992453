package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Columns of the mirrored transactions sheet, A to H.
var Header = []string{"ID", "Owner", "Date", "Name", "Type", "Category", "Payment method", "Amount"}

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors transactions into a spreadsheet keyed by
	// transaction id.
	TransactionExporter interface {
		UpsertTransaction(ctx context.Context, t core.Transaction, categoryLabel string) error
		DeleteTransaction(ctx context.Context, id string) error
	}
)

// Row renders t in Header order.
func Row(t core.Transaction, categoryLabel string) []string {
	if categoryLabel == "" {
		categoryLabel = t.Category
	}
	return []string{
		t.ID,
		t.OwnerID,
		t.Date.Format("2006-01-02"),
		t.Name,
		string(t.Type),
		categoryLabel,
		string(t.PaymentMethod),
		t.Amount.StringFixed(2),
	}
}
