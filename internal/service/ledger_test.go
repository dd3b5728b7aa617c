package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/billing"
	"github.com/rmess/messd/internal/domain/meal"
	"github.com/rmess/messd/internal/port/statestore"
)

func markAttendance(t *testing.T, store *memStore, svc *AttendanceService, userID string, date time.Time, m meal.Meal) {
	t.Helper()
	if err := svc.Toggle(context.Background(), userID, date, m, "admin-1", false); err != nil {
		t.Fatalf("Toggle(%s, %s) error = %v", userID, m, err)
	}
}

func TestMiscChargeProration(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	store.addStudent("s2", "bob")
	store.addStudent("s3", "carol")
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"s1", "s2", "s3"} {
		markAttendance(t, store, att, id, date, meal.Dinner)
	}

	total := decimal.NewFromInt(1000)
	err := ledger.AddMiscCharge(context.Background(), "Gas refill", total, date, billing.ScopeDinner, "admin-1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("AddMiscCharge() error = %v", err)
	}

	var misc []billing.BillItem
	for _, b := range store.st.BillItems {
		if b.Type == billing.TypeMisc {
			misc = append(misc, b)
		}
	}
	if len(misc) != 3 {
		t.Fatalf("misc entries = %d, want 3", len(misc))
	}

	want := total.Div(decimal.NewFromInt(3))
	sum := decimal.Zero
	for _, b := range misc {
		if !b.Amount.Equal(want) {
			t.Errorf("share = %s, want %s", b.Amount, want)
		}
		sum = sum.Add(b.Amount)
	}
	// Shares are equal by construction; the rounding drift against the total
	// stays below a millionth of a unit.
	if sum.Sub(total).Abs().GreaterThan(decimal.NewFromFloat(0.000001)) {
		t.Errorf("sum of shares = %s, drifts too far from %s", sum, total)
	}
}

func TestMiscChargeScopeFiltersAttendees(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	store.addStudent("s2", "bob")
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", date, meal.Breakfast)
	markAttendance(t, store, att, "s2", date, meal.Dinner)

	err := ledger.AddMiscCharge(context.Background(), "Extra milk", decimal.NewFromInt(60), date, billing.ScopeBreakfast, "admin-1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("AddMiscCharge() error = %v", err)
	}

	for _, b := range store.st.BillItems {
		if b.Type == billing.TypeMisc && b.UserID != "s1" {
			t.Errorf("misc entry charged to %s, want only s1", b.UserID)
		}
	}
}

func TestMiscChargeSkipsNonBillable(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	store.addCook("c1", "cook", false)
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", date, meal.Dinner)
	markAttendance(t, store, att, "c1", date, meal.Dinner)

	total := decimal.NewFromInt(100)
	err := ledger.AddMiscCharge(context.Background(), "Firewood", total, date, billing.ScopeBoth, "admin-1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("AddMiscCharge() error = %v", err)
	}

	// The cook attended but is excluded; the full amount lands on the student.
	var miscCount int
	for _, b := range store.st.BillItems {
		if b.Type != billing.TypeMisc {
			continue
		}
		miscCount++
		if b.UserID != "s1" {
			t.Errorf("misc entry charged to %s, want s1", b.UserID)
		}
		if !b.Amount.Equal(total) {
			t.Errorf("share = %s, want %s", b.Amount, total)
		}
	}
	if miscCount != 1 {
		t.Errorf("misc entries = %d, want 1", miscCount)
	}
}

func TestMiscChargeNoBillableAttendees(t *testing.T) {
	store := newMemStore()
	ledger := NewLedgerService(store, nil)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	err := ledger.AddMiscCharge(context.Background(), "Ghost charge", decimal.NewFromInt(100), date, billing.ScopeBoth, "admin-1", BootstrapTenantID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("AddMiscCharge() error = %v, want ErrValidation", err)
	}
	if len(store.st.BillItems) != 0 {
		t.Error("bill items written despite no billable attendees")
	}
}

func TestBalanceDerivation(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)
	ctx := context.Background()

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", date, meal.Breakfast) // +50
	markAttendance(t, store, att, "s1", date, meal.Dinner)    // +80
	if err := ledger.AddMiscCharge(ctx, "Gas", decimal.NewFromInt(150), date, billing.ScopeBoth, "admin-1", BootstrapTenantID); err != nil {
		t.Fatalf("AddMiscCharge() error = %v", err)
	}
	if err := ledger.AddPayment(ctx, "s1", decimal.NewFromInt(100), "admin-1"); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	balance, err := ledger.BalanceFor(ctx, "s1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if want := decimal.NewFromInt(180); !balance.Equal(want) {
		t.Fatalf("balance = %s, want %s", balance, want)
	}

	if err := ledger.AddPayment(ctx, "s1", decimal.NewFromInt(50), "admin-1"); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}
	balance, err = ledger.BalanceFor(ctx, "s1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if want := decimal.NewFromInt(130); !balance.Equal(want) {
		t.Fatalf("balance after second payment = %s, want %s", balance, want)
	}
}

func TestPaymentValidation(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	ledger := NewLedgerService(store, nil)
	ctx := context.Background()

	if err := ledger.AddPayment(ctx, "s1", decimal.NewFromInt(-5), "admin-1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("negative payment error = %v, want ErrValidation", err)
	}
	if err := ledger.AddPayment(ctx, "s1", decimal.Zero, "admin-1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero payment error = %v, want ErrValidation", err)
	}
	if err := ledger.AddPayment(ctx, "missing", decimal.NewFromInt(10), "admin-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", err)
	}
}

func TestRunningHistoryCumulative(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", base, meal.Breakfast)
	markAttendance(t, store, att, "s1", base, meal.Dinner)
	if err := ledger.AddPayment(ctx, "s1", decimal.NewFromInt(30), "admin-1"); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	lines, err := ledger.RunningHistory(ctx, "s1")
	if err != nil {
		t.Fatalf("RunningHistory() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}

	running := decimal.Zero
	for i, l := range lines {
		running = running.Add(l.Item.Amount)
		if !l.BalanceAfter.Equal(running) {
			t.Errorf("line %d balance = %s, want %s", i, l.BalanceAfter, running)
		}
	}
	if want := decimal.NewFromInt(100); !running.Equal(want) {
		t.Errorf("final running balance = %s, want %s", running, want)
	}
}

func TestPeriodSummaryBuckets(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	att := NewAttendanceService(store, nil, billing.DefaultTariff())
	ledger := NewLedgerService(store, nil)
	ctx := context.Background()

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", date, meal.Breakfast)
	if err := ledger.AddMiscCharge(ctx, "Gas", decimal.NewFromInt(90), date, billing.ScopeBoth, "admin-1", BootstrapTenantID); err != nil {
		t.Fatalf("AddMiscCharge() error = %v", err)
	}
	if err := ledger.AddPayment(ctx, "s1", decimal.NewFromInt(40), "admin-1"); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	sum, err := ledger.PeriodSummary(ctx, "s1", start, end)
	if err != nil {
		t.Fatalf("PeriodSummary() error = %v", err)
	}
	if want := decimal.NewFromInt(50); !sum.MealCharges.Equal(want) {
		t.Errorf("meal charges = %s, want %s", sum.MealCharges, want)
	}
	if want := decimal.NewFromInt(90); !sum.MiscCharges.Equal(want) {
		t.Errorf("misc charges = %s, want %s", sum.MiscCharges, want)
	}
}

// mapCache is an in-memory cache.Cache for tests.
type mapCache struct {
	m map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.m[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.m, key)
	return nil
}

// afterViewStore runs a callback once, right after a View call returns, so a
// test can slot a mutation in directly behind a reader's critical section.
type afterViewStore struct {
	statestore.Store
	after func()
}

func (s *afterViewStore) View(ctx context.Context, fn func(st *statestore.State) error) error {
	err := s.Store.View(ctx, fn)
	if s.after != nil {
		f := s.after
		s.after = nil
		f()
	}
	return err
}

func TestBalanceCacheInvalidationOrdering(t *testing.T) {
	store := newMemStore()
	store.addStudent("s1", "alice")
	c := newMapCache()
	att := NewAttendanceService(store, c, billing.DefaultTariff())

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	markAttendance(t, store, att, "s1", date, meal.Breakfast)

	hooked := &afterViewStore{Store: store}
	ledger := NewLedgerService(hooked, c)

	// The unmark lands immediately after the balance read's critical section.
	// Its invalidation must win over the reader's cache fill, never the other
	// way around.
	hooked.after = func() {
		if err := att.Toggle(context.Background(), "s1", date, meal.Breakfast, "admin-1", false); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
	}

	got, err := ledger.BalanceFor(context.Background(), "s1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if want := decimal.NewFromInt(50); !got.Equal(want) {
		t.Fatalf("balance before unmark = %s, want %s", got, want)
	}

	got, err = ledger.BalanceFor(context.Background(), "s1", BootstrapTenantID)
	if err != nil {
		t.Fatalf("BalanceFor() error = %v", err)
	}
	if !got.Equal(decimal.Zero) {
		t.Errorf("balance after unmark = %s, want 0", got)
	}
}
