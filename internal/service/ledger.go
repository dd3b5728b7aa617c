package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/port/cache"
	"github.com/rmess/messd/internal/port/statestore"
)

// balanceTTL bounds how long a cached balance may live. Correctness does not
// depend on it: every mutating ledger path deletes the key transactionally.
const balanceTTL = 5 * time.Minute

// LedgerService is the ledger engine: the sole writer of bill items. Entries
// are immutable once created; balances and summaries are pure folds over the
// entry log, optionally cached behind transactional invalidation.
type LedgerService struct {
	store statestore.Store
	cache cache.Cache
	now   func() time.Time
}

// NewLedgerService creates a LedgerService. cache may be nil.
func NewLedgerService(store statestore.Store, c cache.Cache) *LedgerService {
	return &LedgerService{store: store, cache: c, now: time.Now}
}

// AddMiscCharge splits totalAmount evenly across the billable users who
// attended the given date (one meal or both), creating one misc entry per
// user. With no billable attendees nothing is written.
func (s *LedgerService) AddMiscCharge(ctx context.Context, description string, totalAmount decimal.Decimal, date time.Time, scope billing.ChargeScope, actorID, tenantID string) error {
	if !billing.ValidScopes[scope] {
		return fmt.Errorf("%w: unknown charge scope %q", domain.ErrValidation, scope)
	}
	if !totalAmount.IsPositive() {
		return fmt.Errorf("%w: charge amount must be positive", domain.ErrValidation)
	}
	dateStr := date.Format("2006-01-02")

	var affected []string
	err := s.store.Update(ctx, func(st *statestore.State) error {
		seen := make(map[string]bool)
		var billable []string
		for _, a := range st.Attendance {
			if a.TenantID != tenantID || a.Date != dateStr {
				continue
			}
			if scope != billing.ScopeBoth && a.Meal != meal.Meal(scope) {
				continue
			}
			if seen[a.UserID] {
				continue
			}
			seen[a.UserID] = true
			if u := st.UserByID(a.UserID); u != nil && u.Billable() {
				billable = append(billable, a.UserID)
			}
		}

		if len(billable) == 0 {
			return fmt.Errorf("%w: no billable attendees for %s on %s", domain.ErrValidation, scope, dateStr)
		}

		share := totalAmount.Div(decimal.NewFromInt(int64(len(billable))))
		var scopeText string
		if scope == billing.ScopeBoth {
			scopeText = fmt.Sprintf("%s (Both meals on %s)", description, dateStr)
		} else {
			scopeText = fmt.Sprintf("%s (%s on %s)", description, scope, dateStr)
		}

		ts := s.now()
		for _, userID := range billable {
			st.BillItems = append(st.BillItems, billing.BillItem{
				ID:          uuid.NewString(),
				UserID:      userID,
				TenantID:    tenantID,
				Type:        billing.TypeMisc,
				Description: scopeText,
				Amount:      share,
				Timestamp:   ts,
			})
		}
		appendHistory(st, history.CategoryFinancialAdmin,
			fmt.Sprintf("Added misc charge of %s for %s on %s, affecting %d billable users.",
				totalAmount, scope, dateStr, len(billable)),
			actorID, tenantID)
		for _, userID := range billable {
			invalidateBalance(ctx, s.cache, tenantID, userID)
		}
		affected = billable
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("misc charge added",
		"tenant_id", tenantID, "total", totalAmount, "scope", scope, "users", len(affected))
	return nil
}

// AddPayment records a credit against the user's ledger. The stored amount
// is negated so payments reduce the balance fold.
func (s *LedgerService) AddPayment(ctx context.Context, userID string, amount decimal.Decimal, actorID string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}

	var tenantID string
	err := s.store.Update(ctx, func(st *statestore.State) error {
		u := st.UserByID(userID)
		if u == nil {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		tenantID = u.TenantID
		st.BillItems = append(st.BillItems, billing.BillItem{
			ID:          uuid.NewString(),
			UserID:      userID,
			TenantID:    tenantID,
			Type:        billing.TypePayment,
			Description: "Payment Received",
			Amount:      amount.Neg(),
			Timestamp:   s.now(),
		})
		appendHistory(st, history.CategoryFinancialAdmin,
			fmt.Sprintf("Recorded payment of %s for user %s.", amount, u.Name),
			actorID, tenantID)
		invalidateBalance(ctx, s.cache, tenantID, userID)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("payment recorded", "user_id", userID, "amount", amount, "actor_id", actorID)
	return nil
}

// BalanceFor returns the user's balance: the fold of all their entries.
// A cached value may be served. The fold and the cache fill both run under
// the store's read lock, and every entry-mutating path deletes the key under
// the write lock, so a stale fill can never outlive the invalidation that
// covers it.
func (s *LedgerService) BalanceFor(ctx context.Context, userID, tenantID string) (decimal.Decimal, error) {
	key := balanceKey(tenantID, userID)
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			if d, err := decimal.NewFromString(string(raw)); err == nil {
				return d, nil
			}
		}
	}

	balance := decimal.Zero
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, b := range st.BillItems {
			if b.UserID == userID && b.TenantID == tenantID {
				balance = balance.Add(b.Amount)
			}
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, key, []byte(balance.String()), balanceTTL)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// RunningHistory returns the user's entries sorted ascending by timestamp,
// each paired with the cumulative balance up to and including it. Consumers
// reverse the slice for most-recent-first display.
func (s *LedgerService) RunningHistory(ctx context.Context, userID string) ([]billing.StatementLine, error) {
	var items []billing.BillItem
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, b := range st.BillItems {
			if b.UserID == userID {
				items = append(items, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp.Before(items[j].Timestamp) })

	lines := make([]billing.StatementLine, 0, len(items))
	running := decimal.Zero
	for _, b := range items {
		running = running.Add(b.Amount)
		lines = append(lines, billing.StatementLine{Item: b, BalanceAfter: running})
	}
	return lines, nil
}

// PeriodSummary sums meal and misc charges whose timestamps fall in
// [start, end] inclusive.
func (s *LedgerService) PeriodSummary(ctx context.Context, userID string, start, end time.Time) (billing.PeriodSummary, error) {
	sum := billing.PeriodSummary{MealCharges: decimal.Zero, MiscCharges: decimal.Zero}
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, b := range st.BillItems {
			if b.UserID != userID || b.Timestamp.Before(start) || b.Timestamp.After(end) {
				continue
			}
			switch b.Type {
			case billing.TypeMeal:
				sum.MealCharges = sum.MealCharges.Add(b.Amount)
			case billing.TypeMisc:
				sum.MiscCharges = sum.MiscCharges.Add(b.Amount)
			}
		}
		return nil
	})
	return sum, err
}

// CurrentCycleSummary applies the 15-day-cutover bill cycle to today and
// returns the summary for that window along with its bounds.
func (s *LedgerService) CurrentCycleSummary(ctx context.Context, userID string, today time.Time) (billing.PeriodSummary, time.Time, time.Time, error) {
	start, end := billing.CycleFor(today)
	sum, err := s.PeriodSummary(ctx, userID, start, end)
	return sum, start, end, err
}

func balanceKey(tenantID, userID string) string {
	return "balance:" + tenantID + ":" + userID
}

// invalidateBalance drops the cached balance for a user. Called inside the
// store Update closure of every path that appends or removes one of their
// entries, so the delete is ordered against concurrent read-side cache fills
// by the store lock.
func invalidateBalance(ctx context.Context, c cache.Cache, tenantID, userID string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, balanceKey(tenantID, userID)); err != nil {
		slog.Warn("balance cache invalidation failed", "tenant_id", tenantID, "user_id", userID, "error", err)
	}
}
