package ledger

import (
	"context"
	"errors"
	"testing"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"github.com/shopspring/decimal"
)

// conflictingStore wraps a real store and makes the first n postings fail
// with a write conflict, the way a lost optimistic-version race would.
type conflictingStore struct {
	store.SavingsStore
	conflicts int
	attempts  int
}

func (c *conflictingStore) PostTransaction(ctx context.Context, params store.PostTransactionParams) (*models.Transaction, error) {
	c.attempts++
	if c.attempts <= c.conflicts {
		return nil, store.ErrConcurrentModification
	}
	return c.SavingsStore.PostTransaction(ctx, params)
}

func TestDeposit_RetriesOnConflict(t *testing.T) {
	f := setupLedger(t)
	account := f.openTestAccount(t, "0")

	// Two conflicts within a budget of three retries: the deposit must land
	// on the third attempt without the caller seeing anything.
	conflicting := &conflictingStore{SavingsStore: f.db, conflicts: 2}
	service := NewService(conflicting, nil, models.LedgerConfig{MaxRetries: 3})

	tx, err := service.Deposit(context.Background(), account.Id, decimal.NewFromInt(100), day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("Deposit failed despite retries: %v", err)
	}
	if conflicting.attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", conflicting.attempts)
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected ending balance 100, got %s", tx.BalanceAfter.String())
	}

	balance, err := service.GetBalance(context.Background(), account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected exactly one posting, balance %s", balance.String())
	}
}

func TestDeposit_ConflictSurfacesAfterRetryBudget(t *testing.T) {
	f := setupLedger(t)
	account := f.openTestAccount(t, "0")

	// Never-resolving conflict: after the initial attempt plus MaxRetries
	// retries the error surfaces instead of looping forever.
	conflicting := &conflictingStore{SavingsStore: f.db, conflicts: 100}
	service := NewService(conflicting, nil, models.LedgerConfig{MaxRetries: 3})

	_, err := service.Deposit(context.Background(), account.Id, decimal.NewFromInt(100), day(t, "2025-01-01"))
	if !errors.Is(err, store.ErrConcurrentModification) {
		t.Fatalf("Expected ErrConcurrentModification, got %v", err)
	}
	if conflicting.attempts != 4 {
		t.Errorf("Expected 4 attempts (1 + 3 retries), got %d", conflicting.attempts)
	}

	// The failed posting must not have touched the account
	balance, err := f.service.GetBalance(context.Background(), account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("Expected balance 0 after surfaced conflict, got %s", balance.String())
	}
}

func TestDeposit_NonConflictErrorNotRetried(t *testing.T) {
	f := setupLedger(t)

	conflicting := &conflictingStore{SavingsStore: f.db, conflicts: 0}
	service := NewService(conflicting, nil, models.LedgerConfig{MaxRetries: 3})

	_, err := service.Deposit(context.Background(), "no-such-account", decimal.NewFromInt(100), day(t, "2025-01-01"))
	if !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("Expected ErrAccountNotFound, got %v", err)
	}
	if conflicting.attempts != 1 {
		t.Errorf("Retry budget must only apply to conflicts, got %d attempts", conflicting.attempts)
	}
}
