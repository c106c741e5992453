package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

// handleListTransactions lists all transactions, or one month's when month
// is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpList)
		return
	}
	txs, err := s.svc.Transactions.List(r.Context(), auth.OwnerFromContext(r.Context()), params.Year, params.Month)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpList)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Transactions.Get(r.Context(), auth.OwnerFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpsertTransaction serves both POST /api/transactions (create, or
// update when the body carries an id) and PUT /api/transactions/{id}.
func (s *Server) handleUpsertTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpCreate)
		return
	}
	in, err := req.ToInput(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpCreate)
		return
	}

	op, status := log.OpCreate, http.StatusCreated
	if in.ID != "" {
		op, status = log.OpUpdate, http.StatusOK
	}
	owner := auth.OwnerFromContext(r.Context())
	t, err := s.svc.Transactions.Upsert(r.Context(), owner, in)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, op)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionWritten(r.Context(),
		op, owner, t.ID, string(t.Type), t.Category, t.Amount.StringFixed(2))
	writeJSON(w, status, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFromContext(r.Context())
	id := r.PathValue("id")
	if err := s.svc.Transactions.Delete(r.Context(), owner, id); err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpDelete)
		return
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionWritten(r.Context(),
		log.OpDelete, owner, id, "", "", "")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Eligibility.Status(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpValidate)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleExport streams one month of transactions as an XLSX workbook. The
// workbook is built in memory so a failure can still answer with JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpExport)
		return
	}
	params = params.OrCurrent(s.loc)
	period, err := core.MonthPeriod(params.Year, time.Month(params.Month), s.loc)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpExport)
		return
	}

	ctx := r.Context()
	owner := auth.OwnerFromContext(ctx)
	txs, err := s.svc.Transactions.List(ctx, owner, params.Year, params.Month)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpExport)
		return
	}
	customs, err := s.svc.Categories.List(ctx, owner)
	if err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, txs, customs); err != nil {
		writeServiceError(w, r, err, log.ComponentTransactions, log.OpExport)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Transactions exported",
		"period", period.Key(), "count", len(txs), "bytes", buf.Len())
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(period)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
