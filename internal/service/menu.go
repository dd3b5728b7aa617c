package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/domain/menu"
	"github.com/rmess/messd/internal/domain/user"
	"github.com/rmess/messd/internal/port/statestore"
)

// MenuService manages per-day menus. A dish change fans a notification out
// to every student in the tenant plus its cook; setting an identical dish is
// a no-op.
type MenuService struct {
	store statestore.Store
	notif *NotificationService
}

// NewMenuService creates a MenuService.
func NewMenuService(store statestore.Store, notif *NotificationService) *MenuService {
	return &MenuService{store: store, notif: notif}
}

// GetMenuForDate returns the tenant's menu for the day, or ErrNotFound.
func (s *MenuService) GetMenuForDate(ctx context.Context, date time.Time, tenantID string) (*menu.Menu, error) {
	dateStr := date.Format(attendance.DateLayout)
	var out *menu.Menu
	err := s.store.View(ctx, func(st *statestore.State) error {
		if m := st.MenuFor(dateStr, tenantID); m != nil {
			cp := *m
			out = &cp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("menu for %s: %w", dateStr, domain.ErrNotFound)
	}
	return out, nil
}

// SetMenu upserts the dish for (date, meal) in the tenant. When the dish
// actually changes, the menu update, its notification and both audit entries
// land in one state transition.
func (s *MenuService) SetMenu(ctx context.Context, date time.Time, m meal.Meal, dish string, actorID, tenantID string) error {
	if !meal.Valid[m] {
		return fmt.Errorf("%w: unknown meal %q", domain.ErrValidation, m)
	}
	if dish == "" {
		return fmt.Errorf("%w: dish is required", domain.ErrValidation)
	}
	dateStr := date.Format(attendance.DateLayout)

	var changed bool
	err := s.store.Update(ctx, func(st *statestore.State) error {
		existing := st.MenuFor(dateStr, tenantID)
		if existing != nil && existing.Dish(m) == dish {
			return nil // unchanged: no notification, no history
		}
		if existing != nil {
			existing.SetDish(m, dish)
		} else {
			nm := menu.Menu{Date: dateStr, TenantID: tenantID}
			nm.SetDish(m, dish)
			st.Menus = append(st.Menus, nm)
		}
		changed = true

		var recipients []string
		for _, u := range st.Users {
			if u.TenantID != tenantID {
				continue
			}
			if u.Role == user.RoleStudent || u.Role == user.RoleCook {
				recipients = append(recipients, u.ID)
			}
		}
		if len(recipients) > 0 {
			content := fmt.Sprintf("Menu for %s on %s is updated to: %q.", m, date.Format("02 Jan 2006"), dish)
			appendNotification(st, content, recipients, actorID, tenantID)
			appendHistory(st, history.CategorySystem,
				fmt.Sprintf("Sent menu update notification for %s %s.", dateStr, m), actorID, tenantID)
		}
		appendHistory(st, history.CategoryMenuManagement,
			fmt.Sprintf("Set %s menu to %q for %s.", m, dish, dateStr), actorID, tenantID)
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.notif.Publish(ctx, "menu.updated", map[string]string{
			"tenantId": tenantID,
			"date":     dateStr,
			"meal":     string(m),
			"dish":     dish,
		})
		slog.Info("menu set", "tenant_id", tenantID, "date", dateStr, "meal", m)
	}
	return nil
}
