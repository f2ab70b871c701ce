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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"deposito-savings-go/internal/common"
	"deposito-savings-go/internal/config"
	"deposito-savings-go/internal/models"
	"deposito-savings-go/internal/store"

	"go.uber.org/zap"
)

// reconcile walks every account (or a single one via -account) and verifies
// the stored balance against opening balance plus the fold of the log.
func main() {
	accountFilter := flag.String("account", "", "Optional account id to reconcile (default: all accounts)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	dbService, err := common.InitializeDatabase(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	accounts, err := dbService.GetAccounts(ctx)
	if err != nil {
		zap.L().Fatal("Failed to list accounts", zap.Error(err))
	}

	common.PrintHeader("LEDGER RECONCILIATION", common.DefaultWidth)

	checked, failed := reconcileAccounts(ctx, dbService, accounts, *accountFilter, os.Stdout)

	if failed > 0 {
		common.PrintFooter(fmt.Sprintf("Reconciled %d account(s), %d MISMATCH(ES)", checked, failed), common.DefaultWidth)
		os.Exit(1)
	}
	common.PrintFooter(fmt.Sprintf("Reconciled %d account(s), all consistent", checked), common.DefaultWidth)
}

// reconcileAccounts prints one OK/FAIL line per matching account. The filter
// is applied before the loop so the box prefix marks the last printed line,
// not the last account in the full list.
func reconcileAccounts(ctx context.Context, dbService store.SavingsStore, accounts []models.Account, accountFilter string, out io.Writer) (checked, failed int) {
	matched := accounts
	if accountFilter != "" {
		matched = nil
		for _, account := range accounts {
			if account.Id == accountFilter {
				matched = append(matched, account)
			}
		}
	}

	for i, account := range matched {
		prefix := common.BoxPrefix(i == len(matched)-1)
		if err := dbService.ReconcileAccount(ctx, account.Id); err != nil {
			failed++
			fmt.Fprintf(out, "%sFAIL %s: %v\n", prefix, account.Id, err)
			continue
		}
		fmt.Fprintf(out, "%sOK   %s  balance=%s\n", prefix, account.Id, account.Balance.StringFixed(2))
	}

	return len(matched), failed
}
