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

func (s *Service) GetDepositoTypes(ctx context.Context) ([]models.DepositoType, error) {
	rows, err := s.db.QueryContext(ctx, queryGetDepositoTypes)
	if err != nil {
		zap.L().Error("Failed to query deposito types", zap.Error(err))
		return nil, fmt.Errorf("unable to query deposito types: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var depositoTypes []models.DepositoType
	for rows.Next() {
		depositoType, err := scanDepositoType(rows)
		if err != nil {
			return nil, err
		}
		depositoTypes = append(depositoTypes, *depositoType)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during deposito type row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating deposito type rows: %w", err)
	}

	return depositoTypes, nil
}

func (s *Service) GetDepositoTypeById(ctx context.Context, depositoTypeId string) (*models.DepositoType, error) {
	row := s.db.QueryRowContext(ctx, queryGetDepositoTypeById, depositoTypeId)

	depositoType, err := scanDepositoType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrDepositoTypeNotFound, depositoTypeId)
		}
		return nil, err
	}

	return depositoType, nil
}

func (s *Service) CreateDepositoType(ctx context.Context, name string, yearlyReturn decimal.Decimal) (*models.DepositoType, error) {
	if yearlyReturn.IsNegative() {
		return nil, fmt.Errorf("%w: yearly return must not be negative, got %s", store.ErrInvalidAmount, yearlyReturn.String())
	}

	depositoTypeId := uuid.New().String()
	zap.L().Info("Creating deposito type",
		zap.String("id", depositoTypeId),
		zap.String("name", name),
		zap.String("yearly_return", yearlyReturn.String()))

	if _, err := s.db.ExecContext(ctx, queryInsertDepositoType, depositoTypeId, name, yearlyReturn.String()); err != nil {
		zap.L().Error("Failed to insert deposito type", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("unable to insert deposito type: %w", err)
	}

	return s.GetDepositoTypeById(ctx, depositoTypeId)
}

func (s *Service) UpdateDepositoType(ctx context.Context, depositoTypeId, name string, yearlyReturn decimal.Decimal) (*models.DepositoType, error) {
	if yearlyReturn.IsNegative() {
		return nil, fmt.Errorf("%w: yearly return must not be negative, got %s", store.ErrInvalidAmount, yearlyReturn.String())
	}

	result, err := s.db.ExecContext(ctx, queryUpdateDepositoType, name, yearlyReturn.String(), depositoTypeId)
	if err != nil {
		zap.L().Error("Failed to update deposito type", zap.String("deposito_type_id", depositoTypeId), zap.Error(err))
		return nil, fmt.Errorf("unable to update deposito type: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrDepositoTypeNotFound, depositoTypeId)
	}

	return s.GetDepositoTypeById(ctx, depositoTypeId)
}

// DeleteDepositoType fails when any account still references the tier.
// A tier that backed past transactions but no current account may be removed;
// the log keeps its own copy of every posted figure.
func (s *Service) DeleteDepositoType(ctx context.Context, depositoTypeId string) error {
	var referenceCount int
	if err := s.db.QueryRowContext(ctx, queryCountAccountsByDepositoType, depositoTypeId).Scan(&referenceCount); err != nil {
		return fmt.Errorf("unable to count accounts for deposito type: %w", err)
	}
	if referenceCount > 0 {
		return fmt.Errorf("%w: deposito type %s is used by %d account(s)", store.ErrDepositoTypeInUse, depositoTypeId, referenceCount)
	}

	result, err := s.db.ExecContext(ctx, queryDeleteDepositoType, depositoTypeId)
	if err != nil {
		zap.L().Error("Failed to delete deposito type", zap.String("deposito_type_id", depositoTypeId), zap.Error(err))
		return fmt.Errorf("unable to delete deposito type: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", store.ErrDepositoTypeNotFound, depositoTypeId)
	}

	zap.L().Info("Deposito type deleted", zap.String("deposito_type_id", depositoTypeId))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDepositoType(row rowScanner) (*models.DepositoType, error) {
	var depositoType models.DepositoType
	var yearlyReturnStr string

	err := row.Scan(&depositoType.Id, &depositoType.Name, &yearlyReturnStr,
		&depositoType.CreatedAt, &depositoType.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to scan deposito type row: %w", err)
	}

	depositoType.YearlyReturn, err = decimal.NewFromString(yearlyReturnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse yearly return '%s': %w", yearlyReturnStr, err)
	}

	return &depositoType, nil
}
