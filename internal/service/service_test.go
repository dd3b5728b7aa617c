package service

import (
	"context"

	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/port/statestore"
)

// memStore is an in-memory statestore.Store for tests. No persistence, no
// locking: service tests are single-goroutine.
type memStore struct {
	st statestore.State
}

func newMemStore() *memStore {
	st := Bootstrap()
	return &memStore{st: st}
}

func (m *memStore) View(_ context.Context, fn func(s *statestore.State) error) error {
	return fn(&m.st)
}

func (m *memStore) Update(_ context.Context, fn func(s *statestore.State) error) error {
	return fn(&m.st)
}

func (m *memStore) addStudent(id, name string) {
	m.st.Users = append(m.st.Users, user.User{
		ID:       id,
		Name:     name,
		Role:     user.RoleStudent,
		TenantID: BootstrapTenantID,
	})
}

func (m *memStore) addCook(id, name string, billable bool) {
	m.st.Users = append(m.st.Users, user.User{
		ID:               id,
		Name:             name,
		Role:             user.RoleCook,
		TenantID:         BootstrapTenantID,
		IncludeInBilling: &billable,
	})
}

func hqSettings(m *memStore) *tenant.Settings {
	return m.st.TenantByID(BootstrapTenantID).Settings
}
