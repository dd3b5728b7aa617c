package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/middleware"
)

type miscChargeRequest struct {
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Date        string              `json:"date"`
	Scope       billing.ChargeScope `json:"scope"`
}

// AddMiscCharge handles POST /api/v1/charges/misc
func (h *Handlers) AddMiscCharge(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[miscChargeRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Description, "description") {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}

	err := h.Ledger.AddMiscCharge(r.Context(), req.Description, req.Amount, date, req.Scope, actor, tenantID)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

type paymentRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

// AddPayment handles POST /api/v1/payments
func (h *Handlers) AddPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	req, ok := readJSON[paymentRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.UserID, "userId") {
		return
	}

	if err := h.Ledger.AddPayment(r.Context(), req.UserID, req.Amount, actor); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// UserBalance handles GET /api/v1/users/{id}/balance
func (h *Handlers) UserBalance(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	tenantID := middleware.TenantIDFromContext(r.Context())

	balance, err := h.Ledger.BalanceFor(r.Context(), id, tenantID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

// UserStatement handles GET /api/v1/users/{id}/statement
func (h *Handlers) UserStatement(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	lines, err := h.Ledger.RunningHistory(r.Context(), id)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if lines == nil {
		lines = []billing.StatementLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

type billResponse struct {
	PeriodStart string          `json:"periodStart"`
	PeriodEnd   string          `json:"periodEnd"`
	MealCharges decimal.Decimal `json:"mealCharges"`
	MiscCharges decimal.Decimal `json:"miscCharges"`
	Total       decimal.Decimal `json:"total"`
}

// UserCurrentBill handles GET /api/v1/users/{id}/bill
func (h *Handlers) UserCurrentBill(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	sum, start, end, err := h.Ledger.CurrentCycleSummary(r.Context(), id, time.Now())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billResponse{
		PeriodStart: start.Format(attendance.DateLayout),
		PeriodEnd:   end.Format(attendance.DateLayout),
		MealCharges: sum.MealCharges,
		MiscCharges: sum.MiscCharges,
		Total:       sum.MealCharges.Add(sum.MiscCharges),
	})
}

// UserPeriodSummary handles GET /api/v1/users/{id}/summary
func (h *Handlers) UserPeriodSummary(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	start, ok := parseDate(w, r.URL.Query().Get("start"))
	if !ok {
		return
	}
	end, ok := parseDate(w, r.URL.Query().Get("end"))
	if !ok {
		return
	}
	// Stretch end to the last instant of its day so same-day entries count.
	end = end.Add(24*time.Hour - time.Second)

	sum, err := h.Ledger.PeriodSummary(r.Context(), id, start, end)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
