package store

import (
	"context"
	"errors"
	"time"

	"deposito-savings-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations. Each maps to one
// class of the ledger error taxonomy; callers branch with errors.Is.
var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrDepositoTypeNotFound = errors.New("deposito type not found")
	ErrAccountNotFound      = errors.New("account not found")

	ErrDepositoTypeInUse      = errors.New("deposito type is referenced by an account")
	ErrCustomerHasAccounts    = errors.New("customer has open accounts")
	ErrAccountHasTransactions = errors.New("account has transactions")

	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientFunds      = errors.New("withdrawal exceeds accrued balance")
	ErrNegativeBalance        = errors.New("balance would become negative")
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// PostTransactionParams contains the parameters for posting a transaction to
// an account's log. Amount is the positive magnitude moved; Type decides the
// direction.
type PostTransactionParams struct {
	AccountId       string
	Type            models.TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// SavingsStore defines the contract the ledger core expects from its
// persistence collaborator. The balance update and the log append inside
// PostTransaction must be atomic: both visible or neither.
type SavingsStore interface {
	// --- Customers ---
	GetCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomerById(ctx context.Context, customerId string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, name string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customerId, name string) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, customerId string) error

	// --- Deposito types ---
	GetDepositoTypes(ctx context.Context) ([]models.DepositoType, error)
	GetDepositoTypeById(ctx context.Context, depositoTypeId string) (*models.DepositoType, error)
	CreateDepositoType(ctx context.Context, name string, yearlyReturn decimal.Decimal) (*models.DepositoType, error)
	UpdateDepositoType(ctx context.Context, depositoTypeId, name string, yearlyReturn decimal.Decimal) (*models.DepositoType, error)
	DeleteDepositoType(ctx context.Context, depositoTypeId string) error

	// --- Accounts ---
	GetAccounts(ctx context.Context) ([]models.Account, error)
	GetAccountById(ctx context.Context, accountId string) (*models.Account, error)
	GetAccountsByCustomer(ctx context.Context, customerId string) ([]models.Account, error)
	CreateAccount(ctx context.Context, customerId, depositoTypeId string, openingBalance decimal.Decimal) (*models.Account, error)
	UpdateAccountTier(ctx context.Context, accountId, depositoTypeId string) (*models.Account, error)
	DeleteAccount(ctx context.Context, accountId string) error

	// --- Transaction log ---
	PostTransaction(ctx context.Context, params PostTransactionParams) (*models.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, accountId string) ([]models.Transaction, error)
	ReconstructBalance(ctx context.Context, accountId string) (decimal.Decimal, error)
	ReconcileAccount(ctx context.Context, accountId string) error

	// --- Lifecycle ---
	Close()
}
