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
package prices

import (
	"context"
	"errors"
	"time"

	"github.com/penny-vault/pvstock/data"
	"github.com/penny-vault/pvstock/provider"
	"github.com/rs/zerolog"
)

// HistorySource downloads daily bars for a ticker. A zero start requests the
// full history.
type HistorySource interface {
	History(ctx context.Context, ticker string, start time.Time) ([]*data.Quote, error)
}

// Store persists price bars and reports how far a ticker's history reaches
type Store interface {
	UpsertPrices(ctx context.Context, bars []*data.PriceBar) (int, error)
	LastPriceDate(ctx context.Context, ticker string) (time.Time, error)
}

type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// SyncResult describes what a Sync call did
type SyncResult struct {
	Ticker string
	Mode   Mode

	// Since is the last stored date an incremental sync resumed from
	Since    time.Time
	NumRows  int
	UpToDate bool
}

func (res *SyncResult) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", res.Ticker)
	e.Str("Mode", string(res.Mode))
	if !res.Since.IsZero() {
		e.Str("Since", res.Since.Format(data.DateLayout))
	}
	e.Int("NumRows", res.NumRows)
	e.Bool("UpToDate", res.UpToDate)
}

// Syncer keeps the stored price history of tickers current
type Syncer struct {
	source HistorySource
	store  Store
}

func NewSyncer(source HistorySource, store Store) *Syncer {
	return &Syncer{
		source: source,
		store:  store,
	}
}

// FullSync downloads the maximum available history of ticker and upserts it.
// It returns false, without an error, when the provider has no rows for the
// ticker, which is how unknown tickers present.
func (syncer *Syncer) FullSync(ctx context.Context, ticker string) (bool, error) {
	numRows, err := syncer.fullSync(ctx, ticker)
	if err != nil {
		return false, err
	}
	return numRows > 0, nil
}

func (syncer *Syncer) fullSync(ctx context.Context, ticker string) (int, error) {
	logger := zerolog.Ctx(ctx)

	quotes, err := syncer.source.History(ctx, ticker, time.Time{})
	if err != nil {
		if errors.Is(err, provider.ErrTickerNotFound) {
			logger.Warn().Str("Ticker", ticker).Msg("price provider does not know ticker")
			return 0, nil
		}
		return 0, err
	}

	if len(quotes) == 0 {
		logger.Warn().Str("Ticker", ticker).Msg("price provider returned no rows")
		return 0, nil
	}

	return syncer.save(ctx, ticker, quotes, "")
}

// IncrementalSync downloads bars strictly after last and upserts them. Zero
// new rows means the ticker is already current and is not an error; when the
// day after last has not started yet the provider is not asked at all. A
// zero last behaves like FullSync.
func (syncer *Syncer) IncrementalSync(ctx context.Context, ticker string, last time.Time) (int, error) {
	if last.IsZero() {
		return syncer.fullSync(ctx, ticker)
	}

	logger := zerolog.Ctx(ctx)

	start := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	if start.After(time.Now()) {
		logger.Info().Str("Ticker", ticker).Str("LastDate", last.Format(data.DateLayout)).Msg("already up to date")
		return 0, nil
	}

	quotes, err := syncer.source.History(ctx, ticker, start)
	if err != nil {
		return 0, err
	}

	numRows, err := syncer.save(ctx, ticker, quotes, last.Format(data.DateLayout))
	if err != nil {
		return 0, err
	}

	if numRows == 0 {
		logger.Info().Str("Ticker", ticker).Str("LastDate", last.Format(data.DateLayout)).Msg("already up to date")
	}

	return numRows, nil
}

// Sync resumes from the last stored bar of ticker, or downloads the full
// history when nothing is stored yet
func (syncer *Syncer) Sync(ctx context.Context, ticker string) (*SyncResult, error) {
	last, err := syncer.store.LastPriceDate(ctx, ticker)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Ticker: ticker,
		Mode:   ModeFull,
		Since:  last,
	}

	if last.IsZero() {
		result.NumRows, err = syncer.fullSync(ctx, ticker)
	} else {
		result.Mode = ModeIncremental
		result.NumRows, err = syncer.IncrementalSync(ctx, ticker, last)
		result.UpToDate = result.NumRows == 0
	}

	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Object("Result", result).Msg("price sync finished")
	return result, nil
}

// save harmonizes quotes into bars, drops any bar on or before after (a
// YYYY-MM-DD date, empty to keep all) and upserts the rest
func (syncer *Syncer) save(ctx context.Context, ticker string, quotes []*data.Quote, after string) (int, error) {
	bars := make([]*data.PriceBar, 0, len(quotes))
	for _, quote := range quotes {
		bar := data.NewPriceBar(ticker, quote)
		if after != "" && bar.Date <= after {
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return 0, nil
	}

	numRows, err := syncer.store.UpsertPrices(ctx, bars)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("Ticker", ticker).Int("NumRows", len(bars)).Msg("could not save price bars")
		return 0, err
	}

	zerolog.Ctx(ctx).Info().Str("Ticker", ticker).Int("NumRows", numRows).
		Str("FirstDate", bars[0].Date).Str("LastDate", bars[len(bars)-1].Date).Msg("saved price bars")

	return numRows, nil
}
