package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type customerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.GetCustomers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]customerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, renderCustomer(&customers[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.store.GetCustomerById(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderCustomer(customer))
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCustomerRequest(r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, renderCustomer(customer))
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCustomerRequest(r)
	if err != nil {
		respondBadRequest(w, err)
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, renderCustomer(customer))
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func decodeCustomerRequest(r *http.Request) (*customerRequest, error) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	return &req, nil
}

func respondBadRequest(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Message: err.Error()})
}
