package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"deposito-savings-go/internal/database"
	"deposito-savings-go/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func setupReconcileFixture(t *testing.T) (*database.Service, []models.Account) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
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

	customer, err := db.CreateCustomer(ctx, "Test Customer")
	if err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	tier, err := db.CreateDepositoType(ctx, "Gold", decimal.NewFromInt(12))
	if err != nil {
		t.Fatalf("Failed to create deposito type: %v", err)
	}

	var accounts []models.Account
	for _, balance := range []int64{100, 200, 300} {
		account, err := db.CreateAccount(ctx, customer.Id, tier.Id, decimal.NewFromInt(balance))
		if err != nil {
			t.Fatalf("Failed to create account: %v", err)
		}
		accounts = append(accounts, *account)
	}

	return db, accounts
}

func TestReconcileAccounts_AllAccounts(t *testing.T) {
	db, accounts := setupReconcileFixture(t)

	var out bytes.Buffer
	checked, failed := reconcileAccounts(context.Background(), db, accounts, "", &out)

	if checked != 3 || failed != 0 {
		t.Errorf("Expected 3 checked and 0 failed, got %d/%d", checked, failed)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 report lines, got %d", len(lines))
	}
	for _, line := range lines[:2] {
		if !strings.HasPrefix(line, "│") {
			t.Errorf("Expected continuation prefix on %q", line)
		}
	}
	if !strings.HasPrefix(lines[2], "└") {
		t.Errorf("Expected closing prefix on last line %q", lines[2])
	}
}

func TestReconcileAccounts_FilterClosesBox(t *testing.T) {
	db, accounts := setupReconcileFixture(t)

	// Filter to the first account: it is the only printed line, so it gets
	// the closing prefix even though two more accounts follow it.
	var out bytes.Buffer
	checked, failed := reconcileAccounts(context.Background(), db, accounts, accounts[0].Id, &out)

	if checked != 1 || failed != 0 {
		t.Errorf("Expected 1 checked and 0 failed, got %d/%d", checked, failed)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 report line, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "└") {
		t.Errorf("Expected closing prefix on %q", lines[0])
	}
	if !strings.Contains(lines[0], accounts[0].Id) {
		t.Errorf("Expected line for account %s, got %q", accounts[0].Id, lines[0])
	}
}

func TestReconcileAccounts_UnknownFilter(t *testing.T) {
	db, accounts := setupReconcileFixture(t)

	var out bytes.Buffer
	checked, failed := reconcileAccounts(context.Background(), db, accounts, "no-such-id", &out)

	if checked != 0 || failed != 0 {
		t.Errorf("Expected nothing checked, got %d/%d", checked, failed)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}
