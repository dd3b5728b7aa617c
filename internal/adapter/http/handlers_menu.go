package http

import (
	"net/http"

	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/middleware"
)

// GetMenu handles GET /api/v1/menus
func (h *Handlers) GetMenu(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	date, ok := parseDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}

	m, err := h.Menus.GetMenuForDate(r.Context(), date, tenantID)
	if err != nil {
		writeDomainError(w, err, "no menu for that date")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type setMenuRequest struct {
	Date string    `json:"date"`
	Meal meal.Meal `json:"meal"`
	Dish string    `json:"dish"`
}

// SetMenu handles PUT /api/v1/menus
func (h *Handlers) SetMenu(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[setMenuRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	date, ok := parseDate(w, req.Date)
	if !ok {
		return
	}

	if err := h.Menus.SetMenu(r.Context(), date, req.Meal, req.Dish, actor, tenantID); err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
