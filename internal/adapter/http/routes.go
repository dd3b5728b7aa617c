package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Auth
		r.Post("/auth/login", h.Login)

		// User directory
		r.Get("/users", h.ListUsers)
		r.Post("/users", h.CreateUser)
		r.Get("/users/{id}", h.GetUser)
		r.Put("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)

		// Per-user ledger views
		r.Get("/users/{id}/balance", h.UserBalance)
		r.Get("/users/{id}/statement", h.UserStatement)
		r.Get("/users/{id}/bill", h.UserCurrentBill)
		r.Get("/users/{id}/summary", h.UserPeriodSummary)
		r.Get("/users/{id}/notifications", h.ListUserNotifications)

		// Tenant registry
		r.Get("/tenant", h.GetTenant)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Attendance
		r.Post("/attendance/toggle", h.ToggleAttendance)
		r.Get("/attendance", h.ListAttendance)
		r.Get("/attendance/window", h.AttendanceWindow)

		// Billing writes
		r.Post("/charges/misc", h.AddMiscCharge)
		r.Post("/payments", h.AddPayment)

		// Cash drawer
		r.Get("/cashbox", h.ListCashTransactions)
		r.Post("/cashbox", h.AddCashTransaction)
		r.Get("/cashbox/totals", h.CashTotals)

		// Menus
		r.Get("/menus", h.GetMenu)
		r.Put("/menus", h.SetMenu)

		// Notifications
		r.Post("/notifications", h.SendNotification)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)

		// Registration workflow
		r.Post("/registrations", h.SubmitRegistration)
		r.Get("/registrations", h.ListRegistrations)
		r.Post("/registrations/{id}/approve", h.ApproveRegistration)
		r.Post("/registrations/{id}/reject", h.RejectRegistration)

		// Audit history
		r.Get("/history", h.ListHistory)
	})
}
