package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/attendance"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/port/cache"
	"github.com/rmess/messd/internal/port/statestore"
)

// AttendanceService is the attendance gate. Toggle is the single entry point
// for both marking and unmarking; the mark and its ledger side effect are
// applied in one store transition so no reader can observe one without the
// other.
type AttendanceService struct {
	store  statestore.Store
	cache  cache.Cache
	tariff billing.Tariff
	now    func() time.Time
}

// NewAttendanceService creates an AttendanceService. cache may be nil.
func NewAttendanceService(store statestore.Store, c cache.Cache, tariff billing.Tariff) *AttendanceService {
	return &AttendanceService{store: store, cache: c, tariff: tariff, now: time.Now}
}

// IsOpen reports whether marking is currently permitted for the meal in the
// tenant. Absent settings mean closed. The hour comparison uses the caller's
// wall clock; the system assumes one operating timezone per deployment.
func (s *AttendanceService) IsOpen(ctx context.Context, m meal.Meal, tenantID string, now time.Time) (bool, error) {
	var open bool
	err := s.store.View(ctx, func(st *statestore.State) error {
		open = mealWindowOpen(st, m, tenantID, now)
		return nil
	})
	return open, err
}

// Toggle flips the attendance mark for (userID, date, meal). Creating a mark
// for a billable user appends the matching meal ledger entry; removing one
// removes the single entry keyed by the related meal. enforceWindow applies
// the meal-time window check to this call; admin-driven paths pass false to
// retain override power.
func (s *AttendanceService) Toggle(ctx context.Context, userID string, date time.Time, m meal.Meal, actorID string, enforceWindow bool) error {
	if !meal.Valid[m] {
		return fmt.Errorf("%w: unknown meal %q", domain.ErrValidation, m)
	}
	dateStr := date.Format(attendance.DateLayout)

	var tenantID string
	err := s.store.Update(ctx, func(st *statestore.State) error {
		u := st.UserByID(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		tenantID = u.TenantID

		if enforceWindow && !mealWindowOpen(st, m, tenantID, s.now()) {
			return fmt.Errorf("%s for tenant %s: %w", m, tenantID, domain.ErrWindowClosed)
		}

		if existing := st.MarkFor(userID, dateStr, m); existing != nil {
			removeMark(st, userID, dateStr, m)
			if u.Billable() {
				removeMealEntry(st, userID, dateStr, m)
			}
			appendHistory(st, history.CategoryAttendanceManagement,
				fmt.Sprintf("Removed %s attendance for %s on %s.", m, u.Name, dateStr),
				actorID, tenantID)
			invalidateBalance(ctx, s.cache, tenantID, userID)
			return nil
		}

		st.Attendance = append(st.Attendance, attendance.Mark{
			UserID:   userID,
			TenantID: tenantID,
			Date:     dateStr,
			Meal:     m,
			MarkedAt: s.now(),
		})
		if u.Billable() {
			st.BillItems = append(st.BillItems, billing.BillItem{
				ID:          uuid.NewString(),
				UserID:      userID,
				TenantID:    tenantID,
				Type:        billing.TypeMeal,
				Description: fmt.Sprintf("%s on %s", m, dateStr),
				Amount:      s.tariff[m],
				Timestamp:   s.now(),
				RelatedMeal: &billing.RelatedMeal{Date: dateStr, Meal: m},
			})
		}
		appendHistory(st, history.CategoryAttendanceManagement,
			fmt.Sprintf("Marked %s attendance for %s on %s.", m, u.Name, dateStr),
			actorID, tenantID)
		invalidateBalance(ctx, s.cache, tenantID, userID)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("attendance toggled", "user_id", userID, "date", dateStr, "meal", m, "actor_id", actorID)
	return nil
}

// MarkFor returns the attendance mark for (userID, date, meal), or nil.
func (s *AttendanceService) MarkFor(ctx context.Context, userID string, date time.Time, m meal.Meal) (*attendance.Mark, error) {
	dateStr := date.Format(attendance.DateLayout)
	var out *attendance.Mark
	err := s.store.View(ctx, func(st *statestore.State) error {
		if mk := st.MarkFor(userID, dateStr, m); mk != nil {
			cp := *mk
			out = &cp
		}
		return nil
	})
	return out, err
}

// ListForDate returns all marks for the tenant on the given day.
func (s *AttendanceService) ListForDate(ctx context.Context, tenantID string, date time.Time) ([]attendance.Mark, error) {
	dateStr := date.Format(attendance.DateLayout)
	var out []attendance.Mark
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, a := range st.Attendance {
			if a.TenantID == tenantID && a.Date == dateStr {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}

// mealWindowOpen checks the tenant's window for the meal against the hour of
// now. Half-open interval: the end hour itself is closed.
func mealWindowOpen(st *statestore.State, m meal.Meal, tenantID string, now time.Time) bool {
	t := st.TenantByID(tenantID)
	if t == nil || t.Settings == nil {
		return false
	}
	w, ok := t.Settings.MealTimes[m]
	if !ok {
		return false
	}
	return w.Contains(now.Hour())
}

func removeMark(st *statestore.State, userID, date string, m meal.Meal) {
	for i := range st.Attendance {
		a := &st.Attendance[i]
		if a.UserID == userID && a.Date == date && a.Meal == m {
			st.Attendance = append(st.Attendance[:i], st.Attendance[i+1:]...)
			return
		}
	}
}

// removeMealEntry deletes the single meal-type ledger entry keyed by
// (userID, relatedMeal). The engine never creates duplicates, so removing
// the first match removes the only match.
func removeMealEntry(st *statestore.State, userID, date string, m meal.Meal) {
	for i := range st.BillItems {
		b := &st.BillItems[i]
		if b.UserID == userID && b.Type == billing.TypeMeal &&
			b.RelatedMeal != nil && b.RelatedMeal.Date == date && b.RelatedMeal.Meal == m {
			st.BillItems = append(st.BillItems[:i], st.BillItems[i+1:]...)
			return
		}
	}
}
