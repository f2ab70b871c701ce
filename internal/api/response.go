package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"go.uber.org/zap"
)

// envelope is the JSON shape every endpoint responds with.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("Request failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(envelope{Success: false, Message: err.Error()}); encErr != nil {
		zap.L().Error("Failed to encode error response", zap.Error(encErr))
	}
}

// statusForError maps the ledger error taxonomy onto HTTP status codes. The
// presentation layer translates these into user-facing messages; it never
// re-derives business rules.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrCustomerNotFound),
		errors.Is(err, store.ErrDepositoTypeNotFound),
		errors.Is(err, store.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDepositoTypeInUse),
		errors.Is(err, store.ErrCustomerHasAccounts),
		errors.Is(err, store.ErrAccountHasTransactions):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidAmount),
		errors.Is(err, store.ErrInvalidTransactionType):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInsufficientFunds),
		errors.Is(err, store.ErrNegativeBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrConcurrentModification):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Monetary fields render at two decimal places of display precision; the
// store keeps the exact values.

type customerResponse struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func renderCustomer(c *models.Customer) customerResponse {
	return customerResponse{
		Id:        c.Id,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type depositoTypeResponse struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	YearlyReturn string `json:"yearly_return"`
	MonthlyRate  string `json:"monthly_rate"`
}

func renderDepositoType(d *models.DepositoType) depositoTypeResponse {
	return depositoTypeResponse{
		Id:           d.Id,
		Name:         d.Name,
		YearlyReturn: d.YearlyReturn.String(),
		MonthlyRate:  d.MonthlyRate().String(),
	}
}

type accountResponse struct {
	Id             string `json:"id"`
	CustomerId     string `json:"customer_id"`
	DepositoTypeId string `json:"deposito_type_id"`
	Balance        string `json:"balance"`
	OpeningBalance string `json:"opening_balance"`
}

func renderAccount(a *models.Account) accountResponse {
	return accountResponse{
		Id:             a.Id,
		CustomerId:     a.CustomerId,
		DepositoTypeId: a.DepositoTypeId,
		Balance:        a.Balance.StringFixed(2),
		OpeningBalance: a.OpeningBalance.StringFixed(2),
	}
}

type transactionResponse struct {
	Id              int64  `json:"id"`
	AccountId       string `json:"account_id"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	BalanceBefore   string `json:"balance_before"`
	BalanceAfter    string `json:"balance_after"`
	TransactionDate string `json:"transaction_date"`
}

func renderTransaction(t *models.Transaction) transactionResponse {
	return transactionResponse{
		Id:              t.Id,
		AccountId:       t.AccountId,
		Type:            string(t.Type),
		Amount:          t.Amount.StringFixed(2),
		BalanceBefore:   t.BalanceBefore.StringFixed(2),
		BalanceAfter:    t.BalanceAfter.StringFixed(2),
		TransactionDate: t.TransactionDate.Format("2006-01-02"),
	}
}
