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
package fundamentals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/penny-vault/pvstock/data"
	"github.com/penny-vault/pvstock/provider"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	ErrTaxonomyMissing = errors.New("no supported accounting taxonomy in company facts")
	ErrNoRevenue       = errors.New("no revenue reported in annual filings")
)

// FactsSource resolves tickers to filer ids and downloads their XBRL facts
type FactsSource interface {
	LookupCIK(ctx context.Context, ticker string) (string, error)
	CompanyFacts(ctx context.Context, cik string) (gjson.Result, error)
}

// Store persists normalized fundamentals
type Store interface {
	UpsertFundamentals(ctx context.Context, records []*data.Fundamental) (int, error)
}

type Status int

const (
	// StatusFailed means an unexpected error such as a transport failure,
	// a non-404 HTTP status, an undecodable response or a failed write
	StatusFailed Status = iota

	// StatusNoData means the filer has nothing usable: unknown to SEC, no
	// facts document, no supported taxonomy or no revenue
	StatusNoData

	// StatusPartial means records were built but some metrics were never
	// reported by the filer
	StatusPartial

	// StatusComplete means every metric was reported for at least one year
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusNoData:
		return "no data"
	case StatusPartial:
		return "partial"
	case StatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of normalizing one ticker's fundamentals. Callers
// decide whether anything short of OK should block their workflow.
type Result struct {
	Ticker         string
	CIK            string
	Taxonomy       string
	Status         Status
	Records        []*data.Fundamental
	MissingMetrics []Metric
	Err            error
}

// OK reports whether usable records were produced
func (r *Result) OK() bool {
	return r.Status == StatusComplete || r.Status == StatusPartial
}

func (r *Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", r.Ticker)
	e.Str("CIK", r.CIK)
	e.Str("Taxonomy", r.Taxonomy)
	e.Stringer("Status", r.Status)
	e.Int("NumRecords", len(r.Records))
	if len(r.MissingMetrics) > 0 {
		missing := make([]string, len(r.MissingMetrics))
		for idx, metric := range r.MissingMetrics {
			missing[idx] = string(metric)
		}
		e.Strs("MissingMetrics", missing)
	}
}

// Normalizer turns SEC company facts into annual fundamentals records
type Normalizer struct {
	source FactsSource
	store  Store
}

func NewNormalizer(source FactsSource, store Store) *Normalizer {
	return &Normalizer{
		source: source,
		store:  store,
	}
}

// Fetch downloads and normalizes the fundamentals of ticker without writing
// them
func (normalizer *Normalizer) Fetch(ctx context.Context, ticker string) *Result {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	logger := zerolog.Ctx(ctx)

	cik, err := normalizer.source.LookupCIK(ctx, ticker)
	if err != nil {
		return failure(ticker, "", err)
	}

	facts, err := normalizer.source.CompanyFacts(ctx, cik)
	if err != nil {
		return failure(ticker, cik, err)
	}

	result := Normalize(ticker, facts)
	result.CIK = cik

	logger.Debug().Object("Result", result).Msg("normalized fundamentals")
	return result
}

// Refresh fetches the fundamentals of ticker and upserts every record in a
// single batch. Results that are not OK are returned without writing.
func (normalizer *Normalizer) Refresh(ctx context.Context, ticker string) *Result {
	logger := zerolog.Ctx(ctx)

	result := normalizer.Fetch(ctx, ticker)
	if !result.OK() {
		if result.Status == StatusNoData {
			logger.Warn().Err(result.Err).Str("Ticker", result.Ticker).Msg("no fundamentals available")
		} else {
			logger.Error().Err(result.Err).Str("Ticker", result.Ticker).Msg("fetching fundamentals failed")
		}
		return result
	}

	numRows, err := normalizer.store.UpsertFundamentals(ctx, result.Records)
	if err != nil {
		logger.Error().Err(err).Str("Ticker", result.Ticker).Msg("could not save fundamentals")
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	logger.Info().Object("Result", result).Int("NumRows", numRows).Msg("saved fundamentals")
	return result
}

func failure(ticker, cik string, err error) *Result {
	status := StatusFailed
	if errors.Is(err, provider.ErrTickerNotFound) || errors.Is(err, provider.ErrNotFound) {
		status = StatusNoData
	}

	return &Result{
		Ticker:  ticker,
		CIK:     cik,
		Status:  status,
		Records: []*data.Fundamental{},
		Err:     err,
	}
}

// SelectTaxonomy returns the first supported taxonomy present in a company
// facts document along with its node
func SelectTaxonomy(facts gjson.Result) (*Taxonomy, gjson.Result, error) {
	for _, taxonomy := range Taxonomies {
		node := facts.Get("facts." + taxonomy.Name)
		if node.IsObject() {
			return taxonomy, node, nil
		}
	}
	return nil, gjson.Result{}, ErrTaxonomyMissing
}

// Normalize builds one record per fiscal year reported for revenue. Years
// that appear only in other metrics are ignored.
func Normalize(ticker string, facts gjson.Result) *Result {
	taxonomy, node, err := SelectTaxonomy(facts)
	if err != nil {
		return &Result{
			Ticker:  ticker,
			Status:  StatusNoData,
			Records: []*data.Fundamental{},
			Err:     err,
		}
	}

	resolved := make(map[Metric]map[int]float64)
	missing := []Metric{}
	for _, group := range Groups {
		for _, metric := range group.Metrics {
			values := Resolve(node, taxonomy.Tags[metric])
			resolved[metric] = values
			if len(values) == 0 && metric != Revenue {
				missing = append(missing, metric)
			}
		}
	}

	result := &Result{
		Ticker:         ticker,
		Taxonomy:       taxonomy.Name,
		Records:        []*data.Fundamental{},
		MissingMetrics: missing,
	}

	if len(resolved[Revenue]) == 0 {
		result.Status = StatusNoData
		result.Err = fmt.Errorf("%w: %s", ErrNoRevenue, ticker)
		return result
	}

	years := make([]int, 0, len(resolved[Revenue]))
	for year := range resolved[Revenue] {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		result.Records = append(result.Records, buildRecord(ticker, year, resolved))
	}

	result.Status = StatusComplete
	if len(missing) > 0 {
		result.Status = StatusPartial
	}

	return result
}

func buildRecord(ticker string, year int, resolved map[Metric]map[int]float64) *data.Fundamental {
	value := func(metric Metric) *int64 {
		val, ok := resolved[metric][year]
		if !ok {
			return nil
		}
		return data.Int64(int64(math.Round(val)))
	}

	record := &data.Fundamental{
		Ticker:             ticker,
		Year:               year,
		Revenue:            value(Revenue),
		COGS:               value(COGS),
		OperatingIncome:    value(OperatingIncome),
		NetIncome:          value(NetIncome),
		Shares:             value(Shares),
		OperatingCashFlow:  value(OperatingCashFlow),
		InvestingCashFlow:  value(InvestingCashFlow),
		FinancingCashFlow:  value(FinancingCashFlow),
		TotalAssets:        value(TotalAssets),
		TotalLiabilities:   value(TotalLiabilities),
		CurrentLiabilities: value(CurrentLiabilities),
		LongTermDebt:       value(LongTermDebt),
		StockholdersEquity: value(StockholdersEquity),
	}

	if record.OperatingCashFlow != nil {
		var capex int64
		if val := value(CapitalExpenditure); val != nil {
			capex = *val
			if capex < 0 {
				capex = -capex
			}
		}
		record.FreeCashFlow = data.Int64(*record.OperatingCashFlow - capex)
	}

	if record.Revenue != nil && record.COGS != nil {
		record.GrossMargin = data.Ratio(data.Int64(*record.Revenue-*record.COGS), record.Revenue)
	}

	record.OperatingMargin = data.Ratio(record.OperatingIncome, record.Revenue)
	record.NetMargin = data.Ratio(record.NetIncome, record.Revenue)
	record.DebtToAssetRatio = data.Ratio(record.TotalLiabilities, record.TotalAssets)
	record.EPS = data.Ratio(record.NetIncome, record.Shares)

	return record
}
