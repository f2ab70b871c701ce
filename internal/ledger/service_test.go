package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"deposito-savings-go/internal/database"
	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

type fixture struct {
	service *Service
	db      *database.Service
}

func setupLedger(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
		PingTimeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	return &fixture{
		service: NewService(db, nil, models.LedgerConfig{MaxRetries: 3}),
		db:      db,
	}
}

// openTestAccount opens an account under a 12% tier (1% monthly).
func (f *fixture) openTestAccount(t *testing.T, openingBalance string) *models.Account {
	t.Helper()
	ctx := context.Background()

	customer, err := f.db.CreateCustomer(ctx, "Test Customer")
	if err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	depositoType, err := f.db.CreateDepositoType(ctx, "Gold", decimal.NewFromInt(12))
	if err != nil {
		t.Fatalf("Failed to create deposito type: %v", err)
	}

	account, err := f.service.OpenAccount(ctx, customer.Id, depositoType.Id, decimal.RequireFromString(openingBalance))
	if err != nil {
		t.Fatalf("Failed to open account: %v", err)
	}
	return account
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", value, err)
	}
	return date
}

func TestDeposit(t *testing.T) {
	// Open with 1000, deposit 500: balance 1500, one log entry ending at 1500.
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	tx, err := f.service.Deposit(ctx, account.Id, decimal.NewFromInt(500), day(t, "2025-01-01"))
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if tx.Type != models.TransactionDeposit {
		t.Errorf("Expected deposit, got %s", tx.Type)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected amount 500, got %s", tx.Amount.String())
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected ending balance 1500, got %s", tx.BalanceAfter.String())
	}

	balance, err := f.service.GetBalance(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected balance 1500, got %s", balance.String())
	}

	transactions, err := f.db.GetTransactionsByAccount(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetTransactionsByAccount failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected exactly one log entry, got %d", len(transactions))
	}
}

func TestWithdraw_WithinCeiling(t *testing.T) {
	// From balance 1500 at 1% monthly, the 3-month ceiling is ~1545.45;
	// withdrawing 200 is allowed and debits the principal.
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	if _, err := f.service.Deposit(ctx, account.Id, decimal.NewFromInt(500), day(t, "2025-01-01")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	tx, err := f.service.Withdraw(ctx, account.Id, decimal.NewFromInt(200), day(t, "2025-04-01"), 3)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	if tx.Type != models.TransactionWithdrawal {
		t.Errorf("Expected withdrawal, got %s", tx.Type)
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("Expected ending balance 1300, got %s", tx.BalanceAfter.String())
	}

	if err := f.db.ReconcileAccount(ctx, account.Id); err != nil {
		t.Errorf("ReconcileAccount failed after withdrawal: %v", err)
	}
}

func TestWithdraw_ExceedsCeiling(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	if _, err := f.service.Deposit(ctx, account.Id, decimal.NewFromInt(500), day(t, "2025-01-01")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := f.service.Withdraw(ctx, account.Id, decimal.NewFromInt(200), day(t, "2025-04-01"), 3); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// 2000 > ceiling (~1339.39 from 1300): refused, balance unchanged
	_, err := f.service.Withdraw(ctx, account.Id, decimal.NewFromInt(2000), day(t, "2025-05-01"), 3)
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	balance, err := f.service.GetBalance(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("Expected balance unchanged at 1300, got %s", balance.String())
	}
}

func TestWithdraw_CeilingAllowsButPrincipalRefuses(t *testing.T) {
	// The accrued ceiling can exceed the stored principal. A withdrawal
	// between the two passes the ceiling check but must still be refused:
	// the principal may never go negative.
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	// Ceiling over 24 months: 1000 x 1.01^24 = ~1269.73
	_, err := f.service.Withdraw(ctx, account.Id, decimal.NewFromInt(1100), day(t, "2025-01-01"), 24)
	if !errors.Is(err, store.ErrNegativeBalance) {
		t.Fatalf("Expected ErrNegativeBalance, got %v", err)
	}

	balance, err := f.service.GetBalance(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected balance unchanged at 1000, got %s", balance.String())
	}
}

func TestWithdraw_InvalidInputs(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	tests := []struct {
		name   string
		amount decimal.Decimal
		months int
	}{
		{"zero amount", decimal.Zero, 3},
		{"negative amount", decimal.NewFromInt(-10), 3},
		{"zero months", decimal.NewFromInt(10), 0},
		{"negative months", decimal.NewFromInt(10), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Withdraw(ctx, account.Id, tt.amount, day(t, "2025-01-01"), tt.months)
			if !errors.Is(err, store.ErrInvalidAmount) {
				t.Errorf("Expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}

func TestPostInterest(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	tx, err := f.service.PostInterest(ctx, account.Id, 12, day(t, "2026-01-01"))
	if err != nil {
		t.Fatalf("PostInterest failed: %v", err)
	}

	if tx.Type != models.TransactionInterest {
		t.Errorf("Expected interest entry, got %s", tx.Type)
	}
	// 1000 x 1.01^12 - 1000 = 126.825030, rounded to six places at post time
	if got := tx.Amount.StringFixed(6); got != "126.825030" {
		t.Errorf("Expected interest 126.825030, got %s", got)
	}

	// The accrual is a real log entry, so replaying the log reproduces it
	if err := f.db.ReconcileAccount(ctx, account.Id); err != nil {
		t.Errorf("ReconcileAccount failed after interest posting: %v", err)
	}
}

func TestPostInterest_ZeroRateRejected(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	customer, err := f.db.CreateCustomer(ctx, "Zero Rate Customer")
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	flatTier, err := f.db.CreateDepositoType(ctx, "Flat", decimal.Zero)
	if err != nil {
		t.Fatalf("CreateDepositoType failed: %v", err)
	}
	account, err := f.service.OpenAccount(ctx, customer.Id, flatTier.Id, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("OpenAccount failed: %v", err)
	}

	// Nothing accrues at 0%, so there is nothing to post
	_, err = f.service.PostInterest(ctx, account.Id, 12, day(t, "2026-01-01"))
	if !errors.Is(err, store.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestChangeTier_InvalidatesProjection(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "1000")

	before, err := f.service.Project(ctx, account.Id, 12)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	doubleTier, err := f.db.CreateDepositoType(ctx, "Double", decimal.NewFromInt(24))
	if err != nil {
		t.Fatalf("CreateDepositoType failed: %v", err)
	}
	if _, err := f.service.ChangeTier(ctx, account.Id, doubleTier.Id); err != nil {
		t.Fatalf("ChangeTier failed: %v", err)
	}

	after, err := f.service.Project(ctx, account.Id, 12)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	if !after.AccruedBalance.GreaterThan(before.AccruedBalance) {
		t.Errorf("Projection under the new tier should exceed the old one: %s vs %s",
			after.AccruedBalance.String(), before.AccruedBalance.String())
	}
}

func TestCloseAccount_WithTransactionsRefused(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "0")

	if _, err := f.service.Deposit(ctx, account.Id, decimal.NewFromInt(10), day(t, "2025-01-01")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if err := f.service.CloseAccount(ctx, account.Id); !errors.Is(err, store.ErrAccountHasTransactions) {
		t.Errorf("Expected ErrAccountHasTransactions, got %v", err)
	}
}

func TestOpenAccount_DanglingReferences(t *testing.T) {
	f := setupLedger(t)
	ctx := context.Background()

	customer, err := f.db.CreateCustomer(ctx, "Carol Williams")
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}

	if _, err := f.service.OpenAccount(ctx, customer.Id, "missing", decimal.Zero); !errors.Is(err, store.ErrDepositoTypeNotFound) {
		t.Errorf("Expected ErrDepositoTypeNotFound, got %v", err)
	}
	if _, err := f.service.OpenAccount(ctx, "missing", "also-missing", decimal.Zero); !errors.Is(err, store.ErrCustomerNotFound) {
		t.Errorf("Expected ErrCustomerNotFound, got %v", err)
	}
}

func TestConcurrentDeposits(t *testing.T) {
	// N concurrent deposits of A against a fresh account must end at
	// exactly N x A with N log entries, regardless of interleaving.
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "0")

	const n = 20
	amount := decimal.NewFromInt(5)

	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.Deposit(ctx, account.Id, amount, day(t, "2025-01-01")); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("Concurrent deposit failed: %v", err)
	}

	balance, err := f.service.GetBalance(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(n * 5)) {
		t.Errorf("Expected balance %d, got %s", n*5, balance.String())
	}

	transactions, err := f.db.GetTransactionsByAccount(ctx, account.Id)
	if err != nil {
		t.Fatalf("GetTransactionsByAccount failed: %v", err)
	}
	if len(transactions) != n {
		t.Errorf("Expected %d log entries, got %d", n, len(transactions))
	}

	if err := f.db.ReconcileAccount(ctx, account.Id); err != nil {
		t.Errorf("ReconcileAccount failed after concurrent deposits: %v", err)
	}
}

func TestReconstructionInvariant(t *testing.T) {
	// After any successful sequence, stored balance equals opening balance
	// plus the fold of the log.
	f := setupLedger(t)
	ctx := context.Background()
	account := f.openTestAccount(t, "250")

	if _, err := f.service.Deposit(ctx, account.Id, decimal.RequireFromString("100.25"), day(t, "2025-01-01")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := f.service.Withdraw(ctx, account.Id, decimal.RequireFromString("50.75"), day(t, "2025-02-01"), 1); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if _, err := f.service.PostInterest(ctx, account.Id, 6, day(t, "2025-08-01")); err != nil {
		t.Fatalf("PostInterest failed: %v", err)
	}

	if err := f.db.ReconcileAccount(ctx, account.Id); err != nil {
		t.Errorf("Reconstruction invariant violated: %v", err)
	}
}
