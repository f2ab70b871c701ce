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

package database

const (
	// Customer queries
	queryGetCustomers = `
		SELECT id, name, created_at, updated_at
		FROM customers
		ORDER BY created_at`

	queryGetCustomerById = `
		SELECT id, name, created_at, updated_at
		FROM customers
		WHERE id = ?`

	queryInsertCustomer = `
		INSERT INTO customers (id, name) VALUES (?, ?)`

	queryUpdateCustomer = `
		UPDATE customers
		SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	queryDeleteCustomer = `
		DELETE FROM customers WHERE id = ?`

	queryCountCustomerAccounts = `
		SELECT COUNT(*) FROM accounts WHERE customer_id = ?`

	// Deposito type queries
	queryGetDepositoTypes = `
		SELECT id, name, yearly_return, created_at, updated_at
		FROM deposito_types
		ORDER BY created_at`

	queryGetDepositoTypeById = `
		SELECT id, name, yearly_return, created_at, updated_at
		FROM deposito_types
		WHERE id = ?`

	queryInsertDepositoType = `
		INSERT INTO deposito_types (id, name, yearly_return) VALUES (?, ?, ?)`

	queryUpdateDepositoType = `
		UPDATE deposito_types
		SET name = ?, yearly_return = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	queryDeleteDepositoType = `
		DELETE FROM deposito_types WHERE id = ?`

	queryCountDepositoTypes = `
		SELECT COUNT(*) FROM deposito_types`

	queryCountAccountsByDepositoType = `
		SELECT COUNT(*) FROM accounts WHERE deposito_type_id = ?`

	// Account queries
	queryGetAccounts = `
		SELECT id, customer_id, deposito_type_id, balance, opening_balance,
		       COALESCE(last_transaction_id, 0), version, created_at, updated_at
		FROM accounts
		ORDER BY created_at`

	queryGetAccountById = `
		SELECT id, customer_id, deposito_type_id, balance, opening_balance,
		       COALESCE(last_transaction_id, 0), version, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryGetAccountsByCustomer = `
		SELECT id, customer_id, deposito_type_id, balance, opening_balance,
		       COALESCE(last_transaction_id, 0), version, created_at, updated_at
		FROM accounts
		WHERE customer_id = ?
		ORDER BY created_at`

	queryInsertAccount = `
		INSERT INTO accounts (id, customer_id, deposito_type_id, balance, opening_balance, version)
		VALUES (?, ?, ?, ?, ?, 1)`

	queryUpdateAccountTier = `
		UPDATE accounts
		SET deposito_type_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	queryDeleteAccount = `
		DELETE FROM accounts WHERE id = ?`

	queryCountAccountTransactions = `
		SELECT COUNT(*) FROM transactions WHERE account_id = ?`

	// Transaction queries
	queryGetAccountBalance = `
		SELECT balance, version
		FROM accounts
		WHERE id = ?`

	queryInsertTransaction = `
		INSERT INTO transactions (
			account_id, transaction_type, amount, balance_before, balance_after, transaction_date
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, account_id, transaction_type, amount, balance_before, balance_after,
		          transaction_date, created_at`

	queryUpdateAccountBalance = `
		UPDATE accounts
		SET balance = ?, last_transaction_id = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	queryGetTransactionsByAccount = `
		SELECT id, account_id, transaction_type, amount, balance_before, balance_after,
		       transaction_date, created_at
		FROM transactions
		WHERE account_id = ?
		ORDER BY id ASC`

	queryGetTransactionEntries = `
		SELECT transaction_type, amount
		FROM transactions
		WHERE account_id = ?
		ORDER BY id ASC`
)
