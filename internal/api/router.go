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

package api

import (
	"net/http"
	"time"

	"deposito-savings-go/internal/ledger"
	"deposito-savings-go/internal/store"
	"deposito-savings-go/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler holds the collaborators the HTTP layer delegates to: queries go to
// the store, commands go through the ledger.
type Handler struct {
	store  store.SavingsStore
	ledger *ledger.Service
}

func NewHandler(savingsStore store.SavingsStore, ledgerService *ledger.Service) *Handler {
	return &Handler{store: savingsStore, ledger: ledgerService}
}

// NewRouter registers the command/query surface exposed to the presentation
// collaborator.
func NewRouter(h *Handler, collector *metrics.Collector) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.handleListCustomers)
			r.Post("/", h.handleCreateCustomer)
			r.Get("/{id}", h.handleGetCustomer)
			r.Put("/{id}", h.handleUpdateCustomer)
			r.Delete("/{id}", h.handleDeleteCustomer)
		})

		r.Route("/deposito-types", func(r chi.Router) {
			r.Get("/", h.handleListDepositoTypes)
			r.Post("/", h.handleCreateDepositoType)
			r.Get("/{id}", h.handleGetDepositoType)
			r.Put("/{id}", h.handleUpdateDepositoType)
			r.Delete("/{id}", h.handleDeleteDepositoType)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.handleListAccounts)
			r.Post("/", h.handleOpenAccount)
			r.Get("/customer/{customerId}", h.handleListAccountsByCustomer)
			r.Get("/{id}", h.handleGetAccount)
			r.Put("/{id}", h.handleChangeTier)
			r.Delete("/{id}", h.handleCloseAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/account/{accountId}", h.handleListTransactions)
			r.Post("/deposit", h.handleDeposit)
			r.Post("/withdraw", h.handleWithdraw)
			r.Post("/interest", h.handlePostInterest)
		})

		r.Get("/projections", h.handleProjection)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.GetCustomers(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
