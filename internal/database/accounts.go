package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Service) GetAccounts(ctx context.Context) ([]models.Account, error) {
	return s.queryAccounts(ctx, queryGetAccounts)
}

func (s *Service) GetAccountsByCustomer(ctx context.Context, customerId string) ([]models.Account, error) {
	return s.queryAccounts(ctx, queryGetAccountsByCustomer, customerId)
}

func (s *Service) queryAccounts(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		zap.L().Error("Failed to query accounts", zap.Error(err))
		return nil, fmt.Errorf("unable to query accounts: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during account row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return accounts, nil
}

func (s *Service) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, queryGetAccountById, accountId)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
		}
		return nil, err
	}

	return account, nil
}

// CreateAccount opens an account with the given opening balance. The opening
// balance is kept on the account row rather than synthesized as a log entry:
// the log records only deposits, withdrawals, and interest postings.
func (s *Service) CreateAccount(ctx context.Context, customerId, depositoTypeId string, openingBalance decimal.Decimal) (*models.Account, error) {
	if openingBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative, got %s", store.ErrInvalidAmount, openingBalance.String())
	}

	// Resolve both references up front so a dangling id surfaces as NotFound
	// instead of a constraint violation.
	if _, err := s.GetCustomerById(ctx, customerId); err != nil {
		return nil, err
	}
	if _, err := s.GetDepositoTypeById(ctx, depositoTypeId); err != nil {
		return nil, err
	}

	accountId := uuid.New().String()
	zap.L().Info("Creating account",
		zap.String("id", accountId),
		zap.String("customer_id", customerId),
		zap.String("deposito_type_id", depositoTypeId),
		zap.String("opening_balance", openingBalance.String()))

	_, err := s.db.ExecContext(ctx, queryInsertAccount,
		accountId, customerId, depositoTypeId, openingBalance.String(), openingBalance.String())
	if err != nil {
		zap.L().Error("Failed to insert account", zap.String("customer_id", customerId), zap.Error(err))
		return nil, fmt.Errorf("unable to insert account: %w", err)
	}

	return s.GetAccountById(ctx, accountId)
}

// UpdateAccountTier reassigns the deposito type. Pure metadata change: the
// balance and the log are untouched, past interest is not reinterpreted.
func (s *Service) UpdateAccountTier(ctx context.Context, accountId, depositoTypeId string) (*models.Account, error) {
	if _, err := s.GetDepositoTypeById(ctx, depositoTypeId); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, queryUpdateAccountTier, depositoTypeId, accountId)
	if err != nil {
		zap.L().Error("Failed to update account tier", zap.String("account_id", accountId), zap.Error(err))
		return nil, fmt.Errorf("unable to update account tier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
	}

	zap.L().Info("Account tier changed",
		zap.String("account_id", accountId),
		zap.String("deposito_type_id", depositoTypeId))

	return s.GetAccountById(ctx, accountId)
}

// DeleteAccount closes an account. Refused while the log holds any entries,
// preserving audit integrity.
func (s *Service) DeleteAccount(ctx context.Context, accountId string) error {
	var transactionCount int
	if err := s.db.QueryRowContext(ctx, queryCountAccountTransactions, accountId).Scan(&transactionCount); err != nil {
		return fmt.Errorf("unable to count account transactions: %w", err)
	}
	if transactionCount > 0 {
		return fmt.Errorf("%w: account %s has %d transaction(s)", store.ErrAccountHasTransactions, accountId, transactionCount)
	}

	result, err := s.db.ExecContext(ctx, queryDeleteAccount, accountId)
	if err != nil {
		zap.L().Error("Failed to delete account", zap.String("account_id", accountId), zap.Error(err))
		return fmt.Errorf("unable to delete account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrAccountNotFound, accountId)
	}

	zap.L().Info("Account closed", zap.String("account_id", accountId))
	return nil
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	var balanceStr, openingBalanceStr string

	err := row.Scan(&account.Id, &account.CustomerId, &account.DepositoTypeId,
		&balanceStr, &openingBalanceStr, &account.LastTransactionId,
		&account.Version, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to scan account row: %w", err)
	}

	account.Balance, err = decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance '%s': %w", balanceStr, err)
	}
	account.OpeningBalance, err = decimal.NewFromString(openingBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse opening balance '%s': %w", openingBalanceStr, err)
	}

	return &account, nil
}
