package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rmess/messd/internal/domain"
	"github.com/rmess/messd/internal/domain/cashbox"
)

func TestCashTransactionValidation(t *testing.T) {
	store := newMemStore()
	svc := NewCashboxService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		txType cashbox.TxType
		amount decimal.Decimal
		reason string
	}{
		{"unknown type", "loan", decimal.NewFromInt(10), ""},
		{"zero amount", cashbox.TypeGiven, decimal.Zero, ""},
		{"negative amount", cashbox.TypeGiven, decimal.NewFromInt(-5), ""},
		{"adjustment without reason", cashbox.TypeAdjustment, decimal.NewFromInt(10), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, tt.txType, tt.amount, "admin-1", BootstrapTenantID, tt.reason)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("AddTransaction() error = %v, want ErrValidation", err)
			}
		})
	}

	// Given and returned need no reason; adjustment passes with one.
	if _, err := svc.AddTransaction(ctx, cashbox.TypeGiven, decimal.NewFromInt(500), "admin-1", BootstrapTenantID, ""); err != nil {
		t.Errorf("AddTransaction(given) error = %v", err)
	}
	if _, err := svc.AddTransaction(ctx, cashbox.TypeAdjustment, decimal.NewFromInt(20), "admin-1", BootstrapTenantID, "till miscount"); err != nil {
		t.Errorf("AddTransaction(adjustment) error = %v", err)
	}
}

func TestCashTotals(t *testing.T) {
	store := newMemStore()
	svc := NewCashboxService(store)
	ctx := context.Background()

	add := func(txType cashbox.TxType, amount int64, reason string) {
		t.Helper()
		if _, err := svc.AddTransaction(ctx, txType, decimal.NewFromInt(amount), "admin-1", BootstrapTenantID, reason); err != nil {
			t.Fatalf("AddTransaction(%s, %d) error = %v", txType, amount, err)
		}
	}
	add(cashbox.TypeGiven, 500, "")
	add(cashbox.TypeGiven, 300, "")
	add(cashbox.TypeReturned, 120, "")
	add(cashbox.TypeAdjustment, 30, "till miscount")

	totals, err := svc.Totals(ctx, BootstrapTenantID)
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if want := decimal.NewFromInt(800); !totals.Given.Equal(want) {
		t.Errorf("given = %s, want %s", totals.Given, want)
	}
	if want := decimal.NewFromInt(120); !totals.Returned.Equal(want) {
		t.Errorf("returned = %s, want %s", totals.Returned, want)
	}
	if want := decimal.NewFromInt(30); !totals.Adjustment.Equal(want) {
		t.Errorf("adjustment = %s, want %s", totals.Adjustment, want)
	}
}

func TestCashTransactionsScopedToTenant(t *testing.T) {
	store := newMemStore()
	svc := NewCashboxService(store)
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, cashbox.TypeGiven, decimal.NewFromInt(100), "admin-1", BootstrapTenantID, ""); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if _, err := svc.AddTransaction(ctx, cashbox.TypeGiven, decimal.NewFromInt(999), "other-admin", "tenant-2", ""); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	txs, err := svc.List(ctx, BootstrapTenantID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("amount = %s, want 100", txs[0].Amount)
	}
}
