// Package statestore defines the port for the single-writer application
// state document. All mutation flows through Update, which applies the
// closure atomically and persists the whole document before the next
// operation is observed.
package statestore

import (
	"context"

	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/cashbox"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/domain/menu"
	"github.com/rmess/messd/internal/domain/notification"
	"github.com/rmess/messd/internal/domain/registration"
	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/domain/user"
)

// State is the whole persisted document. Field names match the historical
// JSON layout; missing keys are backfilled from defaults on load.
type State struct {
	Users                []user.User                 `json:"users"`
	Menus                []menu.Menu                 `json:"menus"`
	Attendance           []attendance.Mark           `json:"attendance"`
	CookTransactions     []cashbox.Transaction       `json:"cookTransactions"`
	BillItems            []billing.BillItem          `json:"billItems"`
	Notifications        []notification.Notification `json:"notifications"`
	History              []history.Entry             `json:"history"`
	Tenants              []tenant.Tenant             `json:"tenants"`
	RegistrationRequests []registration.Request      `json:"registrationRequests"`
}

// Store serializes access to the state document.
//
// View runs fn with a read lock held; fn must not retain or mutate the state.
// Update runs fn with the write lock held and, when fn returns nil, persists
// the document. A persistence failure is returned to the caller but the
// in-memory mutation is kept (at-least-once, no-rollback policy).
type Store interface {
	View(ctx context.Context, fn func(s *State) error) error
	Update(ctx context.Context, fn func(s *State) error) error
}

// UserByID returns the user with the given id, or nil.
func (s *State) UserByID(id string) *user.User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

// UserByName returns the first user with the given username, or nil.
// Uniqueness is enforced at creation, so first-match is unambiguous for
// users created by this system.
func (s *State) UserByName(name string) *user.User {
	for i := range s.Users {
		if s.Users[i].Name == name {
			return &s.Users[i]
		}
	}
	return nil
}

// TenantByID returns the tenant with the given id, or nil.
func (s *State) TenantByID(id string) *tenant.Tenant {
	for i := range s.Tenants {
		if s.Tenants[i].ID == id {
			return &s.Tenants[i]
		}
	}
	return nil
}

// MarkFor returns the attendance mark for (userID, date, meal), or nil.
func (s *State) MarkFor(userID, date string, m meal.Meal) *attendance.Mark {
	for i := range s.Attendance {
		a := &s.Attendance[i]
		if a.UserID == userID && a.Date == date && a.Meal == m {
			return a
		}
	}
	return nil
}

// MenuFor returns the menu for (date, tenantID), or nil.
func (s *State) MenuFor(date, tenantID string) *menu.Menu {
	for i := range s.Menus {
		m := &s.Menus[i]
		if m.Date == date && m.TenantID == tenantID {
			return m
		}
	}
	return nil
}

// RequestByID returns the registration request with the given id, or nil.
func (s *State) RequestByID(id string) *registration.Request {
	for i := range s.RegistrationRequests {
		if s.RegistrationRequests[i].ID == id {
			return &s.RegistrationRequests[i]
		}
	}
	return nil
}
