package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain/cashbox"
	"github.com/rmess/messd/internal/middleware"
)

type cashTransactionRequest struct {
	Type   cashbox.TxType  `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// AddCashTransaction handles POST /api/v1/cashbox
func (h *Handlers) AddCashTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[cashTransactionRequest](w, r, maxBodySize)
	if !ok {
		return
	}

	tx, err := h.Cashbox.AddTransaction(r.Context(), req.Type, req.Amount, actor, tenantID, req.Reason)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// ListCashTransactions handles GET /api/v1/cashbox
func (h *Handlers) ListCashTransactions(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())

	txs, err := h.Cashbox.List(r.Context(), tenantID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if txs == nil {
		txs = []cashbox.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// CashTotals handles GET /api/v1/cashbox/totals
func (h *Handlers) CashTotals(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())

	totals, err := h.Cashbox.Totals(r.Context(), tenantID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
