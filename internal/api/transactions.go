package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type depositRequest struct {
	AccountId       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
}

type withdrawRequest struct {
	AccountId       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"`
	Months          int             `json:"months"`
}

type interestRequest struct {
	AccountId       string `json:"account_id"`
	Months          int    `json:"months"`
	TransactionDate string `json:"transaction_date"`
}

type projectionResponse struct {
	AccountId      string `json:"account_id"`
	Months         int    `json:"months"`
	Principal      string `json:"principal"`
	MonthlyRate    string `json:"monthly_rate"`
	AccruedBalance string `json:"accrued_balance"`
	InterestEarned string `json:"interest_earned"`
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountId := chi.URLParam(r, "accountId")

	// Resolve the account first so an unknown id reads as NotFound rather
	// than an empty log.
	if _, err := h.store.GetAccountById(r.Context(), accountId); err != nil {
		respondError(w, err)
		return
	}

	transactions, err := h.store.GetTransactionsByAccount(r.Context(), accountId)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, renderTransaction(&transactions[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	date, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	tx, err := h.ledger.Deposit(r.Context(), req.AccountId, req.Amount, date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderTransaction(tx))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	date, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	tx, err := h.ledger.Withdraw(r.Context(), req.AccountId, req.Amount, date, req.Months)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderTransaction(tx))
}

func (h *Handler) handlePostInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	date, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	tx, err := h.ledger.PostInterest(r.Context(), req.AccountId, req.Months, date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderTransaction(tx))
}

// handleProjection computes the advisory accrued balance a withdrawal would
// be validated against. The figure is not binding: the ledger re-projects at
// post time.
func (h *Handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	accountId := r.URL.Query().Get("account_id")
	monthsStr := r.URL.Query().Get("months")
	if accountId == "" || monthsStr == "" {
		respondBadRequest(w, fmt.Errorf("account_id and months are required"))
		return
	}

	months, err := strconv.Atoi(monthsStr)
	if err != nil {
		respondBadRequest(w, fmt.Errorf("invalid months %q", monthsStr))
		return
	}

	proj, err := h.ledger.Project(r.Context(), accountId, months)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, projectionResponse{
		AccountId:      accountId,
		Months:         proj.Months,
		Principal:      proj.Principal.StringFixed(2),
		MonthlyRate:    proj.MonthlyRate.String(),
		AccruedBalance: proj.AccruedBalance.StringFixed(2),
		InterestEarned: proj.InterestEarned.StringFixed(2),
	})
}

func parseTransactionDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("transaction_date is required")
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction_date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}
