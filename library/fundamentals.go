// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package library

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/penny-vault/pvstock/data"
)

const fundamentalColumns = `ticker, year, revenue, cogs, operating_income, net_income, shares,
operating_cash_flow, investing_cash_flow, financing_cash_flow, free_cash_flow, total_assets,
total_liabilities, current_liabilities, long_term_debt, stockholders_equity, gross_margin,
operating_margin, net_margin, debt_to_asset_ratio, eps`

// UpsertFundamentals writes records keyed by (ticker, year) in a single
// transaction. Missing metrics are stored as NULL.
func (myLibrary *Library) UpsertFundamentals(ctx context.Context, records []*data.Fundamental) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := myLibrary.withTx(ctx, "upsert fundamentals", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO fundamentals_annual (`+fundamentalColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (ticker, year) DO UPDATE SET
	revenue = EXCLUDED.revenue,
	cogs = EXCLUDED.cogs,
	operating_income = EXCLUDED.operating_income,
	net_income = EXCLUDED.net_income,
	shares = EXCLUDED.shares,
	operating_cash_flow = EXCLUDED.operating_cash_flow,
	investing_cash_flow = EXCLUDED.investing_cash_flow,
	financing_cash_flow = EXCLUDED.financing_cash_flow,
	free_cash_flow = EXCLUDED.free_cash_flow,
	total_assets = EXCLUDED.total_assets,
	total_liabilities = EXCLUDED.total_liabilities,
	current_liabilities = EXCLUDED.current_liabilities,
	long_term_debt = EXCLUDED.long_term_debt,
	stockholders_equity = EXCLUDED.stockholders_equity,
	gross_margin = EXCLUDED.gross_margin,
	operating_margin = EXCLUDED.operating_margin,
	net_margin = EXCLUDED.net_margin,
	debt_to_asset_ratio = EXCLUDED.debt_to_asset_ratio,
	eps = EXCLUDED.eps`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.Ticker, rec.Year, rec.Revenue, rec.COGS,
				rec.OperatingIncome, rec.NetIncome, rec.Shares, rec.OperatingCashFlow,
				rec.InvestingCashFlow, rec.FinancingCashFlow, rec.FreeCashFlow, rec.TotalAssets,
				rec.TotalLiabilities, rec.CurrentLiabilities, rec.LongTermDebt,
				rec.StockholdersEquity, rec.GrossMargin, rec.OperatingMargin, rec.NetMargin,
				rec.DebtToAssetRatio, rec.EPS); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return len(records), nil
}

// Fundamentals returns the annual records stored for ticker ordered by fiscal
// year ascending
func (myLibrary *Library) Fundamentals(ctx context.Context, ticker string) ([]*data.Fundamental, error) {
	records := []*data.Fundamental{}
	err := myLibrary.withConn(ctx, "select fundamentals", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &records, `SELECT `+fundamentalColumns+`
FROM fundamentals_annual WHERE ticker = ? ORDER BY year ASC`, ticker)
	})
	return records, err
}

// DeleteFundamentals removes the annual records of ticker and leaves its
// prices and categories alone. It returns the number of records removed.
func (myLibrary *Library) DeleteFundamentals(ctx context.Context, ticker string) (int, error) {
	var removed int64
	err := myLibrary.withConn(ctx, "delete fundamentals", func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx, "DELETE FROM fundamentals_annual WHERE ticker = ?", ticker)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return int(removed), err
}
