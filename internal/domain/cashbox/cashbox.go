// Package cashbox defines the cash drawer transaction model: cash handed to
// or returned by catering staff, independent of per-user billing.
package cashbox

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType categorizes a cash drawer movement.
type TxType string

const (
	TypeGiven      TxType = "given"
	TypeReturned   TxType = "returned"
	TypeAdjustment TxType = "adjustment"
)

// ValidTypes is the set of accepted transaction types.
var ValidTypes = map[TxType]bool{
	TypeGiven:      true,
	TypeReturned:   true,
	TypeAdjustment: true,
}

// Transaction is one cash drawer movement. Amount is unsigned; the direction
// is implied by Type. Adjustments must carry a Reason.
type Transaction struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenantId"`
	Type      TxType          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	AdminID   string          `json:"adminId"`
}

// Totals holds per-type sums for a tenant's cash drawer.
type Totals struct {
	Given      decimal.Decimal `json:"given"`
	Returned   decimal.Decimal `json:"returned"`
	Adjustment decimal.Decimal `json:"adjustment"`
}
