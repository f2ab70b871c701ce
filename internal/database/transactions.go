package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dateLayout is the storage format for effective transaction dates.
const dateLayout = "2006-01-02"

// PostTransaction atomically updates the account balance and appends to the
// transaction log. Either both writes commit or neither does. The optimistic
// version check on the account row turns a lost-update race into
// store.ErrConcurrentModification for the caller to retry.
func (s *Service) PostTransaction(ctx context.Context, params store.PostTransactionParams) (*models.Transaction, error) {
	if !params.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", store.ErrInvalidTransactionType, params.Type)
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidAmount, params.Amount.String())
	}

	zap.L().Info("Posting transaction",
		zap.String("account_id", params.AccountId),
		zap.String("type", string(params.Type)),
		zap.String("amount", params.Amount.String()),
		zap.String("transaction_date", params.TransactionDate.Format(dateLayout)))

	// Start database transaction for atomicity
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentBalanceStr string
	var version int64
	err = tx.QueryRowContext(ctx, queryGetAccountBalance, params.AccountId).Scan(&currentBalanceStr, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrAccountNotFound, params.AccountId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current balance: %w", err)
	}

	currentBalance, err := decimal.NewFromString(currentBalanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current balance '%s': %w", currentBalanceStr, err)
	}

	signedAmount := params.Amount
	if params.Type.Sign() < 0 {
		signedAmount = signedAmount.Neg()
	}
	newBalance := currentBalance.Add(signedAmount)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("%w: %s - %s < 0", store.ErrNegativeBalance, currentBalance.String(), params.Amount.String())
	}

	transaction := &models.Transaction{}
	var amountStr, balanceBeforeStr, balanceAfterStr, transactionDateStr string
	err = tx.QueryRowContext(ctx, queryInsertTransaction,
		params.AccountId, string(params.Type), params.Amount.String(),
		currentBalance.String(), newBalance.String(), params.TransactionDate.Format(dateLayout)).
		Scan(&transaction.Id, &transaction.AccountId, &transaction.Type,
			&amountStr, &balanceBeforeStr, &balanceAfterStr,
			&transactionDateStr, &transaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	transaction.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returned amount: %w", err)
	}
	transaction.BalanceBefore, err = decimal.NewFromString(balanceBeforeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returned balance_before: %w", err)
	}
	transaction.BalanceAfter, err = decimal.NewFromString(balanceAfterStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returned balance_after: %w", err)
	}
	transaction.TransactionDate, err = time.Parse(dateLayout, transactionDateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse returned transaction_date: %w", err)
	}

	// Update account balance (with optimistic locking)
	result, err := tx.ExecContext(ctx, queryUpdateAccountBalance, newBalance.String(), transaction.Id, params.AccountId, version)
	if err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("balance update failed - %w", store.ErrConcurrentModification)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Transaction posted successfully",
		zap.Int64("transaction_id", transaction.Id),
		zap.String("account_id", params.AccountId),
		zap.String("type", string(params.Type)),
		zap.String("old_balance", currentBalance.String()),
		zap.String("new_balance", newBalance.String()))

	return transaction, nil
}

// GetTransactionsByAccount returns the full log for an account ordered by id
// ascending, i.e. insertion order. Repeated calls always yield a consistent
// ordered view as of call time.
func (s *Service) GetTransactionsByAccount(ctx context.Context, accountId string) ([]models.Transaction, error) {
	zap.L().Debug("Getting transactions", zap.String("account_id", accountId))

	rows, err := s.db.QueryContext(ctx, queryGetTransactionsByAccount, accountId)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amountStr, balanceBeforeStr, balanceAfterStr, transactionDateStr string
		err := rows.Scan(&tx.Id, &tx.AccountId, &tx.Type,
			&amountStr, &balanceBeforeStr, &balanceAfterStr,
			&transactionDateStr, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		tx.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}
		tx.BalanceBefore, err = decimal.NewFromString(balanceBeforeStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance before '%s': %w", balanceBeforeStr, err)
		}
		tx.BalanceAfter, err = decimal.NewFromString(balanceAfterStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance after '%s': %w", balanceAfterStr, err)
		}
		tx.TransactionDate, err = time.Parse(dateLayout, transactionDateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction date '%s': %w", transactionDateStr, err)
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during transaction row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// ReconstructBalance folds the log for an account from zero: +deposit,
// -withdrawal, +interest. The fold runs in Go rather than SQL so the sum stays
// in exact decimal arithmetic instead of SQLite's float math.
func (s *Service) ReconstructBalance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactionEntries, accountId)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read transaction entries: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	sum := decimal.Zero
	for rows.Next() {
		var transactionType models.TransactionType
		var amountStr string
		if err := rows.Scan(&transactionType, &amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan transaction entry: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
		}

		if transactionType.Sign() < 0 {
			sum = sum.Sub(amount)
		} else {
			sum = sum.Add(amount)
		}
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating transaction entries: %w", err)
	}

	return sum, nil
}

// ReconcileAccount verifies that the stored balance equals the opening balance
// plus the fold of the log.
func (s *Service) ReconcileAccount(ctx context.Context, accountId string) error {
	zap.L().Info("Reconciling account", zap.String("account_id", accountId))

	account, err := s.GetAccountById(ctx, accountId)
	if err != nil {
		return err
	}

	reconstructed, err := s.ReconstructBalance(ctx, accountId)
	if err != nil {
		return err
	}

	expected := account.OpeningBalance.Add(reconstructed)
	if !account.Balance.Equal(expected) {
		zap.L().Error("Account reconciliation failed",
			zap.String("account_id", accountId),
			zap.String("stored_balance", account.Balance.String()),
			zap.String("opening_balance", account.OpeningBalance.String()),
			zap.String("reconstructed", reconstructed.String()),
			zap.String("difference", account.Balance.Sub(expected).String()))
		return fmt.Errorf("balance mismatch for account %s: stored=%s, opening+log=%s",
			accountId, account.Balance.String(), expected.String())
	}

	zap.L().Info("Account reconciliation successful",
		zap.String("account_id", accountId),
		zap.String("balance", account.Balance.String()))
	return nil
}
