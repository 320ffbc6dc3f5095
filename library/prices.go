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
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/penny-vault/pvstock/data"
)

// UpsertPrices writes bars keyed by (ticker, date) in a single transaction.
// A bar for an existing key overwrites every non-key column.
func (myLibrary *Library) UpsertPrices(ctx context.Context, bars []*data.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	err := myLibrary.withTx(ctx, "upsert prices", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_daily
(ticker, date, open, high, low, close, volume, dividends, stock_splits)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (ticker, date) DO UPDATE SET
	open = EXCLUDED.open,
	high = EXCLUDED.high,
	low = EXCLUDED.low,
	close = EXCLUDED.close,
	volume = EXCLUDED.volume,
	dividends = EXCLUDED.dividends,
	stock_splits = EXCLUDED.stock_splits`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, bar := range bars {
			if _, err := stmt.ExecContext(ctx, bar.Ticker, bar.Date, bar.Open, bar.High, bar.Low,
				bar.Close, bar.Volume, bar.Dividends, bar.StockSplits); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return len(bars), nil
}

// Prices returns every bar stored for ticker ordered by date ascending
func (myLibrary *Library) Prices(ctx context.Context, ticker string) ([]*data.PriceBar, error) {
	bars := []*data.PriceBar{}
	err := myLibrary.withConn(ctx, "select prices", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &bars, `SELECT ticker, date, open, high, low, close, volume,
dividends, stock_splits FROM price_daily WHERE ticker = ? ORDER BY date ASC`, ticker)
	})
	return bars, err
}

// Tickers returns the distinct set of tickers with at least one price bar
func (myLibrary *Library) Tickers(ctx context.Context) ([]string, error) {
	tickers := []string{}
	err := myLibrary.withConn(ctx, "list tickers", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &tickers, "SELECT DISTINCT ticker FROM price_daily ORDER BY ticker")
	})
	return tickers, err
}

// LastPriceDate returns the date of the most recent bar stored for ticker or
// the zero time when none exist
func (myLibrary *Library) LastPriceDate(ctx context.Context, ticker string) (time.Time, error) {
	var last sql.NullString
	err := myLibrary.withConn(ctx, "last price date", func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx, "SELECT max(date) FROM price_daily WHERE ticker = ?", ticker).Scan(&last)
	})

	if err != nil || !last.Valid {
		return time.Time{}, err
	}

	dt, err := time.Parse(data.DateLayout, last.String)
	if err != nil {
		return time.Time{}, wrap("last price date", err)
	}

	return dt, nil
}
