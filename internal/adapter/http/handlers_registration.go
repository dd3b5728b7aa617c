package http

import (
	"net/http"

	"github.com/rmess/messd/internal/domain/registration"
)

// SubmitRegistration handles POST /api/v1/registrations
func (h *Handlers) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[registration.SubmitRequest](w, r, maxBodySize)
	if !ok {
		return
	}

	rr, err := h.Registrations.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "registration failed")
		return
	}
	rr.PasswordHash = ""
	writeJSON(w, http.StatusCreated, rr)
}

// ListRegistrations handles GET /api/v1/registrations
func (h *Handlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	status := registration.Status(r.URL.Query().Get("status"))

	reqs, err := h.Registrations.List(r.Context(), status)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if reqs == nil {
		reqs = []registration.Request{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// ApproveRegistration handles POST /api/v1/registrations/{id}/approve
func (h *Handlers) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id := urlParam(r, "id")

	t, err := h.Registrations.Approve(r.Context(), id, actor)
	if err != nil {
		writeDomainError(w, err, "registration request not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// RejectRegistration handles POST /api/v1/registrations/{id}/reject
func (h *Handlers) RejectRegistration(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id := urlParam(r, "id")

	if err := h.Registrations.Reject(r.Context(), id, actor); err != nil {
		writeDomainError(w, err, "registration request not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
