package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupKey selects the column a grouped store read buckets on.
type GroupKey string

const (
	GroupByType     GroupKey = "type"
	GroupByCategory GroupKey = "category"
)

// TransactionFilter narrows store reads. Zero fields are not applied; time
// bounds are inclusive. OwnerID is always required by stores.
type TransactionFilter struct {
	OwnerID     string
	Type        TransactionType
	DateFrom    time.Time
	DateTo      time.Time
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// ForPeriod returns a filter on owner and transaction date within p.
func ForPeriod(owner string, p Period) TransactionFilter {
	return TransactionFilter{OwnerID: owner, DateFrom: p.Start, DateTo: p.End}
}

// Match applies the filter to an in-memory transaction.
func (f TransactionFilter) Match(t Transaction) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !f.DateFrom.IsZero() && t.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && t.Date.After(f.DateTo) {
		return false
	}
	if !f.CreatedFrom.IsZero() && t.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && t.CreatedAt.After(f.CreatedTo) {
		return false
	}
	return true
}

// GroupValue is one bucket of a grouped read.
type GroupValue struct {
	Key   string
	Count int64
	Sum   decimal.Decimal
}

// FindOptions controls ordering and size of FindMany.
type FindOptions struct {
	Limit     int // 0 means no limit
	Ascending bool
}
