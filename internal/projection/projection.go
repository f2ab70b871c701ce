package projection

import (
	"fmt"

	"deposito-savings-go/internal/store"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Projection is the result of a discrete monthly compounding computation.
// It is advisory: nothing here touches stored state. A tier change between
// projection and posting invalidates the figures, so callers must re-project
// before acting on them.
type Projection struct {
	Principal      decimal.Decimal
	MonthlyRate    decimal.Decimal
	Months         int
	AccruedBalance decimal.Decimal
	InterestEarned decimal.Decimal
}

// Project computes principal x (1 + monthlyRate)^months. Zero months is the
// identity. Full decimal precision is kept internally; rounding to display
// precision is the caller's concern.
func Project(principal, monthlyRate decimal.Decimal, months int) (*Projection, error) {
	if months < 0 {
		return nil, fmt.Errorf("%w: months must not be negative, got %d", store.ErrInvalidAmount, months)
	}
	if monthlyRate.IsNegative() {
		return nil, fmt.Errorf("%w: monthly rate must not be negative, got %s", store.ErrInvalidAmount, monthlyRate.String())
	}
	if principal.IsNegative() {
		return nil, fmt.Errorf("%w: principal must not be negative, got %s", store.ErrInvalidAmount, principal.String())
	}

	factor := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(months)))
	accrued := principal.Mul(factor)

	return &Projection{
		Principal:      principal,
		MonthlyRate:    monthlyRate,
		Months:         months,
		AccruedBalance: accrued,
		InterestEarned: accrued.Sub(principal),
	}, nil
}
