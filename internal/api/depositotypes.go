package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type depositoTypeRequest struct {
	Name         string          `json:"name"`
	YearlyReturn decimal.Decimal `json:"yearly_return"`
}

func (h *Handler) handleListDepositoTypes(w http.ResponseWriter, r *http.Request) {
	depositoTypes, err := h.store.GetDepositoTypes(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]depositoTypeResponse, 0, len(depositoTypes))
	for i := range depositoTypes {
		out = append(out, renderDepositoType(&depositoTypes[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetDepositoType(w http.ResponseWriter, r *http.Request) {
	depositoType, err := h.store.GetDepositoTypeById(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderDepositoType(depositoType))
}

func (h *Handler) handleCreateDepositoType(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDepositoTypeRequest(r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	depositoType, err := h.store.CreateDepositoType(r.Context(), req.Name, req.YearlyReturn)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderDepositoType(depositoType))
}

func (h *Handler) handleUpdateDepositoType(w http.ResponseWriter, r *http.Request) {
	req, err := decodeDepositoTypeRequest(r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	depositoType, err := h.store.UpdateDepositoType(r.Context(), chi.URLParam(r, "id"), req.Name, req.YearlyReturn)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderDepositoType(depositoType))
}

func (h *Handler) handleDeleteDepositoType(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDepositoType(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func decodeDepositoTypeRequest(r *http.Request) (*depositoTypeRequest, error) {
	var req depositoTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.YearlyReturn.IsNegative() {
		return nil, fmt.Errorf("yearly_return must not be negative")
	}
	return &req, nil
}
