package http

import (
	"net/http"
	"time"

	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/middleware"
)

type toggleAttendanceRequest struct {
	UserID string    `json:"userId"`
	Date   string    `json:"date"`
	Meal   meal.Meal `json:"meal"`
	// Override skips the meal-time window check. Admin clients set it when
	// correcting records outside the marking window.
	Override bool `json:"override"`
}

// ToggleAttendance handles POST /api/v1/attendance/toggle
func (h *Handlers) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	req, ok := readJSON[toggleAttendanceRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.UserID, "userId") {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}

	if err := h.Attendance.Toggle(r.Context(), req.UserID, date, req.Meal, actor, !req.Override); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}

	mk, err := h.Attendance.MarkFor(r.Context(), req.UserID, date, req.Meal)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"marked": mk != nil})
}

// ListAttendance handles GET /api/v1/attendance
func (h *Handlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	date, ok := parseDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}

	marks, err := h.Attendance.ListForDate(r.Context(), tenantID, date)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if marks == nil {
		marks = []attendance.Mark{}
	}
	writeJSON(w, http.StatusOK, marks)
}

// AttendanceWindow handles GET /api/v1/attendance/window
func (h *Handlers) AttendanceWindow(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	m := meal.Meal(r.URL.Query().Get("meal"))
	if !meal.Valid[m] {
		writeError(w, http.StatusBadRequest, "meal must be Breakfast or Dinner")
		return
	}

	open, err := h.Attendance.IsOpen(r.Context(), m, tenantID, time.Now())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"open": open})
}
