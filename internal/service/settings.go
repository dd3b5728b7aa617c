package service

import (
	"context"
	"fmt"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/tenant"
	"github.com/rmess/messd/internal/port/statestore"
)

// SettingsService is the tenant registry: per-tenant meal-time windows.
// Hour ranges are accepted as given; a window that never opens (start >= end)
// is the operator's configuration to make, not this service's to correct.
type SettingsService struct {
	store statestore.Store
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(store statestore.Store) *SettingsService {
	return &SettingsService{store: store}
}

// GetSettings returns the tenant's settings.
func (s *SettingsService) GetSettings(ctx context.Context, tenantID string) (*tenant.Settings, error) {
	var out *tenant.Settings
	err := s.store.View(ctx, func(st *statestore.State) error {
		t := st.TenantByID(tenantID)
		if t == nil || t.Settings == nil {
			return fmt.Errorf("tenant %s settings: %w", tenantID, domain.ErrNotFound)
		}
		cp := *t.Settings
		out = &cp
		return nil
	})
	return out, err
}

// UpdateSettings replaces the tenant's settings and logs a System entry.
func (s *SettingsService) UpdateSettings(ctx context.Context, tenantID string, newSettings tenant.Settings, actorID string) error {
	if newSettings.MealTimes == nil {
		return fmt.Errorf("%w: mealTimes is required", domain.ErrValidation)
	}
	return s.store.Update(ctx, func(st *statestore.State) error {
		t := st.TenantByID(tenantID)
		if t == nil {
			return fmt.Errorf("tenant %s: %w", tenantID, domain.ErrNotFound)
		}
		cp := newSettings
		t.Settings = &cp
		appendHistory(st, history.CategorySystem, "Updated meal time settings.", actorID, tenantID)
		return nil
	})
}

// GetTenant returns the tenant record.
func (s *SettingsService) GetTenant(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	var out *tenant.Tenant
	err := s.store.View(ctx, func(st *statestore.State) error {
		t := st.TenantByID(tenantID)
		if t == nil {
			return fmt.Errorf("tenant %s: %w", tenantID, domain.ErrNotFound)
		}
		cp := *t
		out = &cp
		return nil
	})
	return out, err
}
