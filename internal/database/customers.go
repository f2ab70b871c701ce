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

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) GetCustomers(ctx context.Context) ([]models.Customer, error) {
	zap.L().Debug("Querying customers")

	rows, err := s.db.QueryContext(ctx, queryGetCustomers)
	if err != nil {
		zap.L().Error("Failed to query customers", zap.Error(err))
		return nil, fmt.Errorf("unable to query customers: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var customers []models.Customer
	for rows.Next() {
		var customer models.Customer
		if err := rows.Scan(&customer.Id, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			zap.L().Error("Failed to scan customer row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during customer row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating customer rows: %w", err)
	}

	zap.L().Debug("Retrieved customers", zap.Int("count", len(customers)))
	return customers, nil
}

func (s *Service) GetCustomerById(ctx context.Context, customerId string) (*models.Customer, error) {
	zap.L().Debug("Querying customer by ID", zap.String("customer_id", customerId))

	var customer models.Customer
	err := s.db.QueryRowContext(ctx, queryGetCustomerById, customerId).Scan(
		&customer.Id, &customer.Name, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrCustomerNotFound, customerId)
		}
		zap.L().Error("Failed to query customer by ID", zap.String("customer_id", customerId), zap.Error(err))
		return nil, fmt.Errorf("unable to query customer by ID: %w", err)
	}

	return &customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, name string) (*models.Customer, error) {
	customerId := uuid.New().String()
	zap.L().Info("Creating customer", zap.String("id", customerId), zap.String("name", name))

	if _, err := s.db.ExecContext(ctx, queryInsertCustomer, customerId, name); err != nil {
		zap.L().Error("Failed to insert customer", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("unable to insert customer: %w", err)
	}

	return s.GetCustomerById(ctx, customerId)
}

func (s *Service) UpdateCustomer(ctx context.Context, customerId, name string) (*models.Customer, error) {
	zap.L().Info("Updating customer", zap.String("customer_id", customerId), zap.String("name", name))

	result, err := s.db.ExecContext(ctx, queryUpdateCustomer, name, customerId)
	if err != nil {
		zap.L().Error("Failed to update customer", zap.String("customer_id", customerId), zap.Error(err))
		return nil, fmt.Errorf("unable to update customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrCustomerNotFound, customerId)
	}

	return s.GetCustomerById(ctx, customerId)
}

// DeleteCustomer refuses to delete a customer that still owns accounts, so an
// account can never point at a missing holder.
func (s *Service) DeleteCustomer(ctx context.Context, customerId string) error {
	var accountCount int
	if err := s.db.QueryRowContext(ctx, queryCountCustomerAccounts, customerId).Scan(&accountCount); err != nil {
		return fmt.Errorf("unable to count customer accounts: %w", err)
	}
	if accountCount > 0 {
		return fmt.Errorf("%w: customer %s has %d account(s)", store.ErrCustomerHasAccounts, customerId, accountCount)
	}

	result, err := s.db.ExecContext(ctx, queryDeleteCustomer, customerId)
	if err != nil {
		zap.L().Error("Failed to delete customer", zap.String("customer_id", customerId), zap.Error(err))
		return fmt.Errorf("unable to delete customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrCustomerNotFound, customerId)
	}

	zap.L().Info("Customer deleted", zap.String("customer_id", customerId))
	return nil
}
