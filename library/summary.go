// Copyright 2024
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
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/penny-vault/pvstock/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Coverage describes the span of price history stored for one ticker
type Coverage struct {
	Ticker          string `db:"ticker"`
	FirstDate       string `db:"first_date"`
	LastDate        string `db:"last_date"`
	NumBars         int64  `db:"num_bars"`
	NumFundamentals int64  `db:"num_fundamentals"`
}

// Counts holds row totals for each table in the library
type Counts struct {
	Tickers      int64 `db:"tickers"`
	Prices       int64 `db:"prices"`
	Fundamentals int64 `db:"fundamentals"`
	Categories   int64 `db:"categories"`
}

// TotalRecords returns the number of rows stored in each library table
func (myLibrary *Library) TotalRecords(ctx context.Context) (*Counts, error) {
	counts := &Counts{}
	err := myLibrary.withConn(ctx, "count records", func(conn *sql.DB) error {
		return sqlscan.Get(ctx, conn, counts, `SELECT
	(SELECT count(DISTINCT ticker) FROM price_daily) AS tickers,
	(SELECT count(*) FROM price_daily) AS prices,
	(SELECT count(*) FROM fundamentals_annual) AS fundamentals,
	(SELECT count(*) FROM categories) AS categories`)
	})
	return counts, err
}

// LastUpdated returns the most recent price date across all tickers or the
// zero time for an empty library
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	var last sql.NullString
	err := myLibrary.withConn(ctx, "last updated", func(conn *sql.DB) error {
		return conn.QueryRowContext(ctx, "SELECT max(date) FROM price_daily").Scan(&last)
	})

	if err != nil || !last.Valid {
		return time.Time{}, err
	}

	return time.ParseInLocation(data.DateLayout, last.String, time.Local)
}

// Coverage returns the stored price span of every ticker
func (myLibrary *Library) Coverage(ctx context.Context) ([]*Coverage, error) {
	coverage := []*Coverage{}
	err := myLibrary.withConn(ctx, "coverage", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &coverage, `SELECT p.ticker, min(p.date) AS first_date,
max(p.date) AS last_date, count(*) AS num_bars,
(SELECT count(*) FROM fundamentals_annual f WHERE f.ticker = p.ticker) AS num_fundamentals
FROM price_daily p GROUP BY p.ticker ORDER BY p.ticker`)
	})
	return coverage, err
}

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString("# Stock Library\n")
	builder.WriteString("## Details\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBPath))

	counts, err := myLibrary.TotalRecords(ctx)
	if err != nil {
		return "", err
	}

	builder.WriteString(p.Sprintf("  * Tickers Tracked: %d\n", counts.Tickers))
	builder.WriteString(p.Sprintf("  * Price Bars: %d\n", counts.Prices))
	builder.WriteString(p.Sprintf("  * Fundamentals Records: %d\n", counts.Fundamentals))
	builder.WriteString(p.Sprintf("  * Categories: %d\n\n", counts.Categories))

	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	if lastUpdated.IsZero() {
		builder.WriteString("Last Updated: Never\n\n")
	} else {
		age := timeago.English.Format(lastUpdated)
		builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Format("01/02/2006")))
	}

	builder.WriteString("## Tickers\n\n")

	coverage, err := myLibrary.Coverage(ctx)
	if err != nil {
		return "", err
	}

	for _, item := range coverage {
		categories, err := myLibrary.TickerCategories(ctx, item.Ticker)
		if err != nil {
			return "", err
		}

		names := make([]string, len(categories))
		for idx, category := range categories {
			names[idx] = category.Name
		}

		line := p.Sprintf("  * %s (%s - %s) %d bars, %d fiscal years", item.Ticker, item.FirstDate,
			item.LastDate, item.NumBars, item.NumFundamentals)
		if len(names) > 0 {
			line = fmt.Sprintf("%s [%s]", line, strings.Join(names, ", "))
		}
		builder.WriteString(line + "\n")
	}

	builder.WriteString("\n## Categories\n\n")

	categories, err := myLibrary.Categories(ctx)
	if err != nil {
		return "", err
	}

	for _, category := range categories {
		tickers, err := myLibrary.CategoryTickers(ctx, category.Name)
		if err != nil {
			return "", err
		}

		builder.WriteString(p.Sprintf("  * %s (%d)\n", category.Name, len(tickers)))
	}

	return builder.String(), nil
}
