package http

import (
	"net/http"

	"github.com/rmess/messd/internal/domain/notification"
	"github.com/rmess/messd/internal/middleware"
)

type sendNotificationRequest struct {
	Content      string   `json:"content"`
	RecipientIDs []string `json:"recipientIds"`
}

// SendNotification handles POST /api/v1/notifications
func (h *Handlers) SendNotification(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	tenantID := middleware.TenantIDFromContext(r.Context())

	req, ok := readJSON[sendNotificationRequest](w, r, maxBodySize)
	if !ok {
		return
	}

	n, err := h.Notifications.Send(r.Context(), req.Content, req.RecipientIDs, actor, tenantID)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// ListUserNotifications handles GET /api/v1/users/{id}/notifications
func (h *Handlers) ListUserNotifications(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	ns, err := h.Notifications.ListFor(r.Context(), id)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if ns == nil {
		ns = []notification.Notification{}
	}
	writeJSON(w, http.StatusOK, ns)
}

type markReadRequest struct {
	UserID string `json:"userId"`
}

// MarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")

	req, ok := readJSON[markReadRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.UserID, "userId") {
		return
	}

	if err := h.Notifications.MarkRead(r.Context(), id, req.UserID); err != nil {
		writeDomainError(w, err, "notification not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
