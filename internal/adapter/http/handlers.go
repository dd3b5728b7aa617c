package http

import (
	"net/http"

	"github.com/rmess/messd/internal/middleware"
	"github.com/rmess/messd/internal/service"
)

// Handlers bundles the service dependencies for all HTTP endpoints.
type Handlers struct {
	Users         *service.UserService
	Settings      *service.SettingsService
	Attendance    *service.AttendanceService
	Ledger        *service.LedgerService
	Cashbox       *service.CashboxService
	Menus         *service.MenuService
	Notifications *service.NotificationService
	Registrations *service.RegistrationService
	History       *service.HistoryService
}

// NewHandlers creates the handler set.
func NewHandlers(
	users *service.UserService,
	settings *service.SettingsService,
	att *service.AttendanceService,
	ledger *service.LedgerService,
	cashbox *service.CashboxService,
	menus *service.MenuService,
	notifications *service.NotificationService,
	registrations *service.RegistrationService,
	hist *service.HistoryService,
) *Handlers {
	return &Handlers{
		Users:         users,
		Settings:      settings,
		Attendance:    att,
		Ledger:        ledger,
		Cashbox:       cashbox,
		Menus:         menus,
		Notifications: notifications,
		Registrations: registrations,
		History:       hist,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[loginRequest](w, r, maxBodySize)
	if !ok {
		return
	}
	if !requireField(w, req.Username, "username") || !requireField(w, req.Password, "password") {
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, u.Redacted())
}

// ListHistory handles GET /api/v1/history
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	includeSystem := r.URL.Query().Get("includeSystem") == "true"

	entries, err := h.History.ListForTenant(r.Context(), tenantID, includeSystem)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
