// Package billing defines the immutable ledger entry model and the pure
// derivations built over it: running balances, period summaries and the
// bill-cycle convention.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain/meal"
)

// ItemType categorizes a ledger entry.
type ItemType string

const (
	TypeMeal     ItemType = "meal"
	TypeMisc     ItemType = "misc"
	TypeArrears  ItemType = "arrears"
	TypeSecurity ItemType = "security"
	TypePayment  ItemType = "payment"
)

// RelatedMeal keys a meal-type entry back to the attendance mark that
// produced it. At most one meal entry may exist per (user, date, meal).
type RelatedMeal struct {
	Date string    `json:"date"` // YYYY-MM-DD, tenant-local
	Meal meal.Meal `json:"meal"`
}

// BillItem is one immutable, signed monetary record attributable to a user.
// Positive amounts are charges, negative amounts are credits. Corrections
// happen by appending offsetting entries, never by editing existing ones.
type BillItem struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	TenantID    string          `json:"tenantId"`
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	RelatedMeal *RelatedMeal    `json:"relatedMeal,omitempty"`
}

// StatementLine pairs a ledger entry with the cumulative balance up to and
// including it.
type StatementLine struct {
	Item         BillItem        `json:"item"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
}

// PeriodSummary aggregates meal and misc charges within a period.
type PeriodSummary struct {
	MealCharges decimal.Decimal `json:"mealCharges"`
	MiscCharges decimal.Decimal `json:"miscCharges"`
}

// Tariff maps each meal to its fixed per-attendance charge.
type Tariff map[meal.Meal]decimal.Decimal

// DefaultTariff returns the deployment default: breakfast 50, dinner 80.
func DefaultTariff() Tariff {
	return Tariff{
		meal.Breakfast: decimal.NewFromInt(50),
		meal.Dinner:    decimal.NewFromInt(80),
	}
}

// ChargeScope selects the attendee cohort for a misc charge.
type ChargeScope string

const (
	ScopeBreakfast ChargeScope = ChargeScope(meal.Breakfast)
	ScopeDinner    ChargeScope = ChargeScope(meal.Dinner)
	ScopeBoth      ChargeScope = "Both"
)

// ValidScopes is the set of accepted misc-charge scopes.
var ValidScopes = map[ChargeScope]bool{
	ScopeBreakfast: true,
	ScopeDinner:    true,
	ScopeBoth:      true,
}

// CycleFor returns the current bill cycle for the given day, per the
// 15-day-cutover convention: after the 15th the cycle is the first half of
// the current month; on or before the 15th it is the second half of the
// previous month.
func CycleFor(today time.Time) (start, end time.Time) {
	y, m, d := today.Date()
	loc := today.Location()
	if d > 15 {
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = time.Date(y, m, 15, 23, 59, 59, 0, loc)
		return start, end
	}
	firstOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	prevEnd := firstOfMonth.Add(-time.Second) // last second of previous month
	py, pm, _ := prevEnd.Date()
	start = time.Date(py, pm, 16, 0, 0, 0, 0, loc)
	return start, prevEnd
}
