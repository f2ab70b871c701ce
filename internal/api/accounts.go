package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"deposito-savings-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type openAccountRequest struct {
	CustomerId     string          `json:"customer_id"`
	DepositoTypeId string          `json:"deposito_type_id"`
	Balance        decimal.Decimal `json:"balance"`
}

type changeTierRequest struct {
	DepositoTypeId string `json:"deposito_type_id"`
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.GetAccounts(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderAccounts(accounts))
}

func (h *Handler) handleListAccountsByCustomer(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.GetAccountsByCustomer(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderAccounts(accounts))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.store.GetAccountById(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderAccount(account))
}

func (h *Handler) handleOpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.CustomerId == "" || req.DepositoTypeId == "" {
		respondBadRequest(w, fmt.Errorf("customer_id and deposito_type_id are required"))
		return
	}

	account, err := h.ledger.OpenAccount(r.Context(), req.CustomerId, req.DepositoTypeId, req.Balance)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderAccount(account))
}

func (h *Handler) handleChangeTier(w http.ResponseWriter, r *http.Request) {
	var req changeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.DepositoTypeId == "" {
		respondBadRequest(w, fmt.Errorf("deposito_type_id is required"))
		return
	}

	account, err := h.ledger.ChangeTier(r.Context(), chi.URLParam(r, "id"), req.DepositoTypeId)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderAccount(account))
}

func (h *Handler) handleCloseAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.CloseAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func renderAccounts(accounts []models.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, renderAccount(&accounts[i]))
	}
	return out
}
