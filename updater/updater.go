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
package updater

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvstock/fundamentals"
	"github.com/penny-vault/pvstock/healthcheck"
	"github.com/penny-vault/pvstock/prices"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyTicker          = errors.New("ticker must not be empty")
	ErrNoPriceData          = errors.New("no price data available")
	ErrFundamentalsRequired = errors.New("fundamentals are required but unavailable")
	ErrPanic                = errors.New("ticker update panicked")
)

// Store is the part of the library the updater manages tickers through
type Store interface {
	Tickers(ctx context.Context) ([]string, error)
	LastPriceDate(ctx context.Context, ticker string) (time.Time, error)
	DeleteTicker(ctx context.Context, ticker string) (bool, error)
	DeleteFundamentals(ctx context.Context, ticker string) (int, error)
}

type PriceSyncer interface {
	Sync(ctx context.Context, ticker string) (*prices.SyncResult, error)
	FullSync(ctx context.Context, ticker string) (bool, error)
}

type FundamentalsRefresher interface {
	Refresh(ctx context.Context, ticker string) *fundamentals.Result
}

type Options struct {
	// Fundamentals refreshes fundamentals for every ticker during UpdateAll
	Fundamentals bool

	// RequireFundamentals makes AddTicker fail when fundamentals cannot be
	// normalized for the ticker
	RequireFundamentals bool

	// HealthcheckURL, when set, is pinged with the outcome of UpdateAll
	HealthcheckURL string
}

// Updater drives price and fundamentals syncs across the ticker universe
type Updater struct {
	store        Store
	prices       PriceSyncer
	fundamentals FundamentalsRefresher
}

func New(store Store, priceSyncer PriceSyncer, refresher FundamentalsRefresher) *Updater {
	return &Updater{
		store:        store,
		prices:       priceSyncer,
		fundamentals: refresher,
	}
}

// NormalizeTicker trims and upper-cases a user supplied ticker
func NormalizeTicker(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return "", ErrEmptyTicker
	}
	return ticker, nil
}

// RunSummary tallies the outcome of an UpdateAll run
type RunSummary struct {
	RunID     uuid.UUID
	StartTime time.Time
	EndTime   time.Time

	Succeeded int
	Failed    int
	NumRows   int

	// Failures maps each failed ticker to its error
	Failures map[string]error

	// Err is set when the ticker universe itself could not be listed
	Err error
}

func (summary *RunSummary) Duration() time.Duration {
	return summary.EndTime.Sub(summary.StartTime)
}

func (summary *RunSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("RunID", summary.RunID.String())
	e.Int("Succeeded", summary.Succeeded)
	e.Int("Failed", summary.Failed)
	e.Int("NumRows", summary.NumRows)
	e.Str("RunTime", durafmt.Parse(summary.Duration()).LimitFirstN(2).String())
}

func (summary *RunSummary) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("run %s: %d succeeded, %d failed, %d rows written in %s\n",
		summary.RunID, summary.Succeeded, summary.Failed, summary.NumRows,
		durafmt.Parse(summary.Duration()).LimitFirstN(2)))

	if summary.Err != nil {
		builder.WriteString(fmt.Sprintf("error: %s\n", summary.Err))
	}

	tickers := make([]string, 0, len(summary.Failures))
	for ticker := range summary.Failures {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		builder.WriteString(fmt.Sprintf("  %s: %s\n", ticker, summary.Failures[ticker]))
	}

	return builder.String()
}

// UpdateAll syncs prices, and optionally fundamentals, for every stored
// ticker one after another. A failure or panic while updating one ticker is
// logged and counted; the remaining tickers are still processed.
func (updater *Updater) UpdateAll(ctx context.Context, opts Options) *RunSummary {
	summary := &RunSummary{
		RunID:     uuid.New(),
		StartTime: time.Now(),
		Failures:  make(map[string]error),
	}

	runLogger := log.With().Str("RunID", summary.RunID.String()).Logger()

	tickers, err := updater.store.Tickers(ctx)
	if err != nil {
		runLogger.Error().Err(err).Msg("could not list tickers")
		summary.Err = err
		tickers = nil
	}

	for _, ticker := range tickers {
		tickerLogger := runLogger.With().Str("Ticker", ticker).Logger()
		tickerCtx := tickerLogger.WithContext(ctx)

		numRows, err := updater.updateTicker(tickerCtx, ticker, opts)
		if err != nil {
			tickerLogger.Error().Err(err).Msg("update failed")
			summary.Failed++
			summary.Failures[ticker] = err
			continue
		}

		summary.Succeeded++
		summary.NumRows += numRows
	}

	summary.EndTime = time.Now()
	runLogger.Info().Object("Summary", summary).Msg("update finished")

	if opts.HealthcheckURL != "" {
		success := summary.Failed == 0 && summary.Err == nil
		if err := healthcheck.Ping(ctx, opts.HealthcheckURL, success, summary.String()); err != nil {
			runLogger.Warn().Err(err).Msg("could not ping healthcheck")
		}
	}

	return summary
}

func (updater *Updater) updateTicker(ctx context.Context, ticker string, opts Options) (numRows int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	result, err := updater.prices.Sync(ctx, ticker)
	if err != nil {
		return 0, err
	}
	numRows = result.NumRows

	if opts.Fundamentals {
		fundResult := updater.fundamentals.Refresh(ctx, ticker)
		if fundResult.Status == fundamentals.StatusFailed {
			return numRows, fundResult.Err
		}
		numRows += len(fundResult.Records)
	}

	return numRows, nil
}

// AddResult describes a newly registered ticker
type AddResult struct {
	Ticker       string
	Fundamentals *fundamentals.Result
}

// AddTicker registers a ticker by refreshing its fundamentals and downloading
// its full price history. Missing fundamentals only block registration when
// opts.RequireFundamentals is set. A new ticker without price data is not
// registered and the fundamentals written for it are removed; the stored
// data of an already tracked ticker is never deleted here.
func (updater *Updater) AddTicker(ctx context.Context, ticker string, opts Options) (*AddResult, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("Ticker", ticker).Logger()
	ctx = logger.WithContext(ctx)

	last, err := updater.store.LastPriceDate(ctx, ticker)
	if err != nil {
		return nil, err
	}
	tracked := !last.IsZero()

	result := &AddResult{
		Ticker:       ticker,
		Fundamentals: updater.fundamentals.Refresh(ctx, ticker),
	}

	if opts.RequireFundamentals && !result.Fundamentals.OK() {
		return result, fmt.Errorf("%w: %s: %v", ErrFundamentalsRequired, ticker, result.Fundamentals.Err)
	}

	ok, err := updater.prices.FullSync(ctx, ticker)
	if err != nil {
		return result, err
	}

	if !ok {
		if !tracked && len(result.Fundamentals.Records) > 0 {
			if _, err := updater.store.DeleteFundamentals(ctx, ticker); err != nil {
				logger.Warn().Err(err).Msg("could not remove fundamentals of ticker without prices")
			}
		}
		return result, fmt.Errorf("%w: %s", ErrNoPriceData, ticker)
	}

	logger.Info().Stringer("Fundamentals", result.Fundamentals.Status).Msg("added ticker")
	return result, nil
}

// RemoveTicker purges all stored data of ticker. It reports false when there
// was nothing to remove.
func (updater *Updater) RemoveTicker(ctx context.Context, ticker string) (bool, error) {
	ticker, err := NormalizeTicker(ticker)
	if err != nil {
		return false, err
	}

	return updater.store.DeleteTicker(ctx, ticker)
}
