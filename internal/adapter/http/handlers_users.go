package http

import (
	"net/http"

	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/middleware"
)

// --- User Directory ---

// ListUsers handles GET /api/v1/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	users, err := h.Users.ListByTenant(r.Context(), tenantID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	redacted := make([]user.User, 0, len(users))
	for _, u := range users {
		redacted = append(redacted, u.Redacted())
	}
	writeJSON(w, http.StatusOK, redacted)
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[user.CreateRequest](w, r, maxBodySize)
	if !ok {
		return
	}

	u, err := h.Users.Add(r.Context(), req, actor, tenantID)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, u.Redacted())
}

// GetUser handles GET /api/v1/users/{id}
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	u, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u.Redacted())
}

// UpdateUser handles PUT /api/v1/users/{id}
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id := urlParam(r, "id")

	req, ok := readJSON[user.UpdateRequest](w, r, maxBodySize)
	if !ok {
		return
	}

	u, err := h.Users.Update(r.Context(), id, req, actor)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u.Redacted())
}

// DeleteUser handles DELETE /api/v1/users/{id}
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id := urlParam(r, "id")

	if err := h.Users.Delete(r.Context(), id, actor); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tenant & Settings ---

// GetTenant handles GET /api/v1/tenant
func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	t, err := h.Settings.GetTenant(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// GetSettings handles GET /api/v1/settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	s, err := h.Settings.GetSettings(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, err, "settings not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/v1/settings
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[tenant.Settings](w, r, maxBodySize)
	if !ok {
		return
	}

	if err := h.Settings.UpdateSettings(r.Context(), tenantID, req, actor); err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
