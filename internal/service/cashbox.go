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
	"github.com/rmess/messd/internal/domain/cashbox"
	"github.com/rmess/messd/internal/domain/history"
	"github.com/rmess/messd/internal/port/statestore"
)

// CashboxService is the cash drawer ledger: cash given to and returned by
// catering staff, plus audited adjustments. It has no linkage to the
// per-user billing ledger.
type CashboxService struct {
	store statestore.Store
	now   func() time.Time
}

// NewCashboxService creates a CashboxService.
func NewCashboxService(store statestore.Store) *CashboxService {
	return &CashboxService{store: store, now: time.Now}
}

// AddTransaction records a cash drawer movement. Adjustments require a
// non-empty reason; given/returned do not.
func (s *CashboxService) AddTransaction(ctx context.Context, txType cashbox.TxType, amount decimal.Decimal, adminID, tenantID, reason string) (*cashbox.Transaction, error) {
	if !cashbox.ValidTypes[txType] {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, txType)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if txType == cashbox.TypeAdjustment && reason == "" {
		return nil, fmt.Errorf("%w: adjustment requires a reason", domain.ErrValidation)
	}

	tx := cashbox.Transaction{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Type:      txType,
		Amount:    amount,
		Reason:    reason,
		Timestamp: s.now(),
		AdminID:   adminID,
	}

	err := s.store.Update(ctx, func(st *statestore.State) error {
		st.CookTransactions = append(st.CookTransactions, tx)
		appendHistory(st, history.CategoryFinancialAdmin,
			fmt.Sprintf("Cook transaction: %s %s.", txType, amount), adminID, tenantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("cash transaction recorded", "tenant_id", tenantID, "type", txType, "amount", amount)
	return &tx, nil
}

// List returns the tenant's transactions, most recent first.
func (s *CashboxService) List(ctx context.Context, tenantID string) ([]cashbox.Transaction, error) {
	var out []cashbox.Transaction
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, tx := range st.CookTransactions {
			if tx.TenantID == tenantID {
				out = append(out, tx)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Totals returns the per-type sums for the tenant's drawer.
func (s *CashboxService) Totals(ctx context.Context, tenantID string) (cashbox.Totals, error) {
	t := cashbox.Totals{Given: decimal.Zero, Returned: decimal.Zero, Adjustment: decimal.Zero}
	err := s.store.View(ctx, func(st *statestore.State) error {
		for _, tx := range st.CookTransactions {
			if tx.TenantID != tenantID {
				continue
			}
			switch tx.Type {
			case cashbox.TypeGiven:
				t.Given = t.Given.Add(tx.Amount)
			case cashbox.TypeReturned:
				t.Returned = t.Returned.Add(tx.Amount)
			case cashbox.TypeAdjustment:
				t.Adjustment = t.Adjustment.Add(tx.Amount)
			}
		}
		return nil
	})
	return t, err
}
