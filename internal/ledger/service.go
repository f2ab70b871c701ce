/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/projection"
	"deposito-savings-go/internal/store"
	"deposito-savings-go/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultMaxRetries = 3

// Service owns the rules for mutating account balances. Every mutating
// operation on one account is serialized through a per-account mutex; the
// store's optimistic version check is the second line of defense, retried a
// bounded number of times before the conflict surfaces.
type Service struct {
	store      store.SavingsStore
	metrics    *metrics.Collector
	maxRetries int
	locks      sync.Map // account id -> *sync.Mutex
}

func NewService(savingsStore store.SavingsStore, collector *metrics.Collector, cfg models.LedgerConfig) *Service {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Service{
		store:      savingsStore,
		metrics:    collector,
		maxRetries: maxRetries,
	}
}

// lockAccount acquires the mutex for one account, creating it on first use.
// Operations on different accounts proceed in parallel.
func (s *Service) lockAccount(accountId string) func() {
	v, _ := s.locks.LoadOrStore(accountId, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// OpenAccount creates an account for a customer under a deposito tier with an
// optional opening balance (zero when not supplied by the caller).
func (s *Service) OpenAccount(ctx context.Context, customerId, depositoTypeId string, openingBalance decimal.Decimal) (account *models.Account, err error) {
	defer s.observe("open_account", time.Now(), &err)

	if openingBalance.IsNegative() {
		return nil, store.ErrInvalidAmount
	}

	account, err = s.store.CreateAccount(ctx, customerId, depositoTypeId, openingBalance)
	if err != nil {
		return nil, err
	}

	s.metrics.SetAccountBalance(account.Id, account.Balance.InexactFloat64())
	return account, nil
}

// ChangeTier reassigns the account's deposito type. No transaction is logged
// and past interest is not reinterpreted; any projection computed before the
// change is invalid and must be recomputed.
func (s *Service) ChangeTier(ctx context.Context, accountId, depositoTypeId string) (account *models.Account, err error) {
	defer s.observe("change_tier", time.Now(), &err)

	unlock := s.lockAccount(accountId)
	defer unlock()

	return s.store.UpdateAccountTier(ctx, accountId, depositoTypeId)
}

// Deposit credits amount to the account and appends a deposit entry.
func (s *Service) Deposit(ctx context.Context, accountId string, amount decimal.Decimal, date time.Time) (tx *models.Transaction, err error) {
	defer s.observe("deposit", time.Now(), &err)

	if !amount.IsPositive() {
		return nil, store.ErrInvalidAmount
	}

	unlock := s.lockAccount(accountId)
	defer unlock()

	return s.postWithRetry(ctx, store.PostTransactionParams{
		AccountId:       accountId,
		Type:            models.TransactionDeposit,
		Amount:          amount,
		TransactionDate: date,
	})
}

// Withdraw debits amount from the stored principal after validating it
// against the accrued ceiling: the balance projected over months of compound
// interest under the account's current tier. The ceiling is recomputed here,
// at post time, so a stale projection can never authorize a withdrawal.
func (s *Service) Withdraw(ctx context.Context, accountId string, amount decimal.Decimal, date time.Time, months int) (tx *models.Transaction, err error) {
	defer s.observe("withdraw", time.Now(), &err)

	if !amount.IsPositive() || months <= 0 {
		return nil, store.ErrInvalidAmount
	}

	unlock := s.lockAccount(accountId)
	defer unlock()

	proj, err := s.projectAccount(ctx, accountId, months)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(proj.AccruedBalance) {
		zap.L().Warn("Withdrawal exceeds accrued ceiling",
			zap.String("account_id", accountId),
			zap.String("amount", amount.String()),
			zap.String("ceiling", proj.AccruedBalance.String()),
			zap.Int("months", months))
		return nil, store.ErrInsufficientFunds
	}

	// The ceiling includes not-yet-posted interest, so the store's
	// non-negative guard still applies to the principal debit.
	return s.postWithRetry(ctx, store.PostTransactionParams{
		AccountId:       accountId,
		Type:            models.TransactionWithdrawal,
		Amount:          amount,
		TransactionDate: date,
	})
}

// PostInterest makes accrual explicit: it credits the interest earned over
// months under the current tier as a tagged log entry, so replaying the log
// reproduces the accrued figures instead of leaving them ephemeral.
func (s *Service) PostInterest(ctx context.Context, accountId string, months int, date time.Time) (tx *models.Transaction, err error) {
	defer s.observe("post_interest", time.Now(), &err)

	if months <= 0 {
		return nil, store.ErrInvalidAmount
	}

	unlock := s.lockAccount(accountId)
	defer unlock()

	proj, err := s.projectAccount(ctx, accountId, months)
	if err != nil {
		return nil, err
	}

	// Six decimal places at post time; full precision stays inside the
	// projection engine.
	interest := proj.InterestEarned.Round(6)
	if !interest.IsPositive() {
		return nil, store.ErrInvalidAmount
	}

	return s.postWithRetry(ctx, store.PostTransactionParams{
		AccountId:       accountId,
		Type:            models.TransactionInterest,
		Amount:          interest,
		TransactionDate: date,
	})
}

// GetBalance returns the stored principal of an account.
func (s *Service) GetBalance(ctx context.Context, accountId string) (decimal.Decimal, error) {
	account, err := s.store.GetAccountById(ctx, accountId)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// CloseAccount removes an account. Refused while its log is non-empty.
func (s *Service) CloseAccount(ctx context.Context, accountId string) (err error) {
	defer s.observe("close_account", time.Now(), &err)

	unlock := s.lockAccount(accountId)
	defer unlock()

	return s.store.DeleteAccount(ctx, accountId)
}

// Project computes the advisory accrued balance for an account over months
// under its current tier. Nothing is persisted.
func (s *Service) Project(ctx context.Context, accountId string, months int) (*projection.Projection, error) {
	if months < 0 {
		return nil, store.ErrInvalidAmount
	}
	return s.projectAccount(ctx, accountId, months)
}

func (s *Service) projectAccount(ctx context.Context, accountId string, months int) (*projection.Projection, error) {
	account, err := s.store.GetAccountById(ctx, accountId)
	if err != nil {
		return nil, err
	}

	depositoType, err := s.store.GetDepositoTypeById(ctx, account.DepositoTypeId)
	if err != nil {
		return nil, err
	}

	return projection.Project(account.Balance, depositoType.MonthlyRate(), months)
}

// postWithRetry posts a transaction, retrying a bounded number of times when
// the store reports a write conflict. A conflicting write is never dropped
// silently: after the retry budget the conflict error surfaces to the caller.
func (s *Service) postWithRetry(ctx context.Context, params store.PostTransactionParams) (*models.Transaction, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		tx, err := s.store.PostTransaction(ctx, params)
		if err == nil {
			s.metrics.SetAccountBalance(params.AccountId, tx.BalanceAfter.InexactFloat64())
			return tx, nil
		}
		if !errors.Is(err, store.ErrConcurrentModification) {
			return nil, err
		}

		lastErr = err
		s.metrics.IncConflictRetry()
		zap.L().Warn("Write conflict, retrying",
			zap.String("account_id", params.AccountId),
			zap.String("type", string(params.Type)),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", s.maxRetries))
	}
	return nil, lastErr
}

func (s *Service) observe(operation string, start time.Time, err *error) {
	s.metrics.ObserveOperation(operation, time.Since(start), *err)
}
