package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of balance-affecting operations. The
// persistence layer rejects anything outside this set, so the log never
// contains free-form spellings like "withdraw".
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionInterest   TransactionType = "interest"
)

// Valid reports whether t is one of the closed transaction kinds.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdrawal, TransactionInterest:
		return true
	}
	return false
}

// Sign returns the direction the amount moves the balance: +1 for credits
// (deposit, interest), -1 for debits (withdrawal).
func (t TransactionType) Sign() int {
	if t == TransactionWithdrawal {
		return -1
	}
	return 1
}

// Customer represents an account holder
type Customer struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DepositoType is a named interest tier with a fixed annual percentage rate.
// YearlyReturn is a percentage, e.g. 5.0 means 5% per year.
type DepositoType struct {
	Id           string          `db:"id"`
	Name         string          `db:"name"`
	YearlyReturn decimal.Decimal `db:"yearly_return"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlyRate derives the monthly compounding rate from the annual percentage.
// Always derived, never stored, so the two cannot drift.
func (d DepositoType) MonthlyRate() decimal.Decimal {
	return d.YearlyReturn.Div(twelve).Div(hundred)
}

// Account represents current balance state (hot data). Balance is the stored
// principal; OpeningBalance is the balance the account was created with and is
// the base term for log reconstruction.
type Account struct {
	Id                string          `db:"id"`
	CustomerId        string          `db:"customer_id"`
	DepositoTypeId    string          `db:"deposito_type_id"`
	Balance           decimal.Decimal `db:"balance"`
	OpeningBalance    decimal.Decimal `db:"opening_balance"`
	LastTransactionId int64           `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Transaction represents immutable transaction history (cold data). Id is
// assigned by the log in insertion order and is strictly increasing.
// TransactionDate is the effective date supplied by the caller, distinct from
// CreatedAt (insertion time).
type Transaction struct {
	Id              int64           `db:"id"`
	AccountId       string          `db:"account_id"`
	Type            TransactionType `db:"transaction_type"`
	Amount          decimal.Decimal `db:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before"`
	BalanceAfter    decimal.Decimal `db:"balance_after"`
	TransactionDate time.Time       `db:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at"`
}
