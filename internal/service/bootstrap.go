// Package service contains the application services: user directory, tenant
// registry, attendance gate, ledger engine, cash drawer ledger, audit log,
// menu, notification and registration workflows.
package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/cashbox"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/menu"
	"github.com/rmess/messd/internal/domain/notification"
	"github.com/rmess/messd/internal/domain/registration"
	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/port/statestore"
)

// Identifiers of the seeded headquarters tenant and its super-admin.
const (
	BootstrapTenantID = "tenant-1"
	BootstrapAdminID  = "admin-1"
)

// Bootstrap returns the initial state for a fresh deployment: one
// super-admin (no password until set via the admin CLI), one tenant with the
// default meal schedule, and the opening audit entry. Missing keys in an
// existing document are backfilled from this state on load.
func Bootstrap() statestore.State {
	return statestore.State{
		Users: []user.User{
			{
				ID:           BootstrapAdminID,
				Name:         "admin",
				Role:         user.RoleAdmin,
				TenantID:     BootstrapTenantID,
				IsSuperAdmin: true,
			},
		},
		Menus:            []menu.Menu{},
		Attendance:       []attendance.Mark{},
		CookTransactions: []cashbox.Transaction{},
		BillItems:        []billing.BillItem{},
		Notifications:    []notification.Notification{},
		History: []history.Entry{
			{
				ID:          uuid.NewString(),
				Type:        history.CategorySystem,
				Description: "System initialized.",
				Timestamp:   time.Now(),
				ActorID:     history.ActorSystem,
				TenantID:    history.TenantSystem,
			},
		},
		Tenants: []tenant.Tenant{
			{
				ID:       BootstrapTenantID,
				Name:     "R-Mess HQ",
				OwnerID:  BootstrapAdminID,
				Settings: tenant.DefaultSettings(),
			},
		},
		RegistrationRequests: []registration.Request{},
	}
}
