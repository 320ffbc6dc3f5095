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
package data

import (
	"github.com/rs/zerolog"
)

// Fundamental is one fiscal year of normalized annual filing data for a
// ticker. Raw metrics are nil when the filer did not report them for the year;
// derived ratios are nil when they could not be computed.
type Fundamental struct {
	// [Entity] Ticker symbol the filing was resolved from
	Ticker string `db:"ticker" json:"ticker" csv:"ticker"`

	// [Entity] Fiscal year the company reported against (the `fy` field of
	// the filing), which need not align with the calendar year
	Year int `db:"year" json:"year" csv:"year"`

	// [Income Statement] Total revenue recognized during the year
	Revenue *int64 `db:"revenue" json:"revenue" csv:"revenue"`

	// [Income Statement] Cost of revenue / cost of goods sold
	COGS *int64 `db:"cogs" json:"cogs" csv:"cogs"`

	// [Income Statement] Operating income (loss)
	OperatingIncome *int64 `db:"operating_income" json:"operatingIncome" csv:"operating_income"`

	// [Income Statement] Net income (loss) attributable to the parent
	NetIncome *int64 `db:"net_income" json:"netIncome" csv:"net_income"`

	// [Income Statement] Weighted average diluted shares outstanding
	Shares *int64 `db:"shares" json:"shares" csv:"shares"`

	// [Cash Flow Statement] Net cash provided by operating activities
	OperatingCashFlow *int64 `db:"operating_cash_flow" json:"operatingCashFlow" csv:"operating_cash_flow"`

	// [Cash Flow Statement] Net cash used in investing activities
	InvestingCashFlow *int64 `db:"investing_cash_flow" json:"investingCashFlow" csv:"investing_cash_flow"`

	// [Cash Flow Statement] Net cash used in financing activities
	FinancingCashFlow *int64 `db:"financing_cash_flow" json:"financingCashFlow" csv:"financing_cash_flow"`

	// [Cash Flow Statement] Operating cash flow less the absolute value of
	// capital expenditures; capex that was not reported counts as zero
	FreeCashFlow *int64 `db:"free_cash_flow" json:"freeCashFlow" csv:"free_cash_flow"`

	// [Balance Sheet] Total assets at fiscal year end
	TotalAssets *int64 `db:"total_assets" json:"totalAssets" csv:"total_assets"`

	// [Balance Sheet] Total liabilities at fiscal year end
	TotalLiabilities *int64 `db:"total_liabilities" json:"totalLiabilities" csv:"total_liabilities"`

	// [Balance Sheet] Liabilities due within one year
	CurrentLiabilities *int64 `db:"current_liabilities" json:"currentLiabilities" csv:"current_liabilities"`

	// [Balance Sheet] Non-current portion of long-term debt
	LongTermDebt *int64 `db:"long_term_debt" json:"longTermDebt" csv:"long_term_debt"`

	// [Balance Sheet] Equity attributable to the parent's stockholders
	StockholdersEquity *int64 `db:"stockholders_equity" json:"stockholdersEquity" csv:"stockholders_equity"`

	// [Metrics] (Revenue - COGS) / Revenue
	GrossMargin *float64 `db:"gross_margin" json:"grossMargin" csv:"gross_margin"`

	// [Metrics] Operating income / Revenue
	OperatingMargin *float64 `db:"operating_margin" json:"operatingMargin" csv:"operating_margin"`

	// [Metrics] Net income / Revenue
	NetMargin *float64 `db:"net_margin" json:"netMargin" csv:"net_margin"`

	// [Metrics] Total liabilities / Total assets
	DebtToAssetRatio *float64 `db:"debt_to_asset_ratio" json:"debtToAssetRatio" csv:"debt_to_asset_ratio"`

	// [Metrics] Net income / Shares
	EPS *float64 `db:"eps" json:"eps" csv:"eps"`
}

// Ratio divides num by den and rounds the result to 4 decimals. It returns
// nil when either side is missing or the denominator is zero.
func Ratio(num, den *int64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}

	val := Round(float64(*num)/float64(*den), 4)
	return &val
}

// RatioOrZero collapses a missing ratio into 0 for consumers, like charts,
// that cannot plot gaps
func RatioOrZero(ratio *float64) float64 {
	if ratio == nil {
		return 0
	}
	return *ratio
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

func (fundamental *Fundamental) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", fundamental.Ticker)
	e.Int("Year", fundamental.Year)

	if fundamental.Revenue != nil {
		e.Int64("Revenue", *fundamental.Revenue)
	}

	if fundamental.NetIncome != nil {
		e.Int64("NetIncome", *fundamental.NetIncome)
	}

	if fundamental.EPS != nil {
		e.Float64("EPS", *fundamental.EPS)
	}
}
