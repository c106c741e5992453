package memory

import (
	"context"
	"errors"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Exporter keeps mirrored rows in memory, in insertion order.
type Exporter struct {
	mu    sync.Mutex
	order []string
	rows  map[string][]string
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: map[string][]string{}}
}

func (e *Exporter) UpsertTransaction(_ context.Context, t core.Transaction, categoryLabel string) error {
	if t.ID == "" {
		return errors.New("transaction id is required")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[t.ID]; !ok {
		e.order = append(e.order, t.ID)
	}
	e.rows[t.ID] = ports.Row(t, categoryLabel)
	return nil
}

func (e *Exporter) DeleteTransaction(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[id]; !ok {
		return nil
	}
	delete(e.rows, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns a copy of the mirrored rows.
func (e *Exporter) Rows() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, append([]string(nil), e.rows[id]...))
	}
	return out
}

// Row returns the mirrored row for id.
func (e *Exporter) Row(id string) ([]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rows[id]
	return append([]string(nil), r...), ok
}
