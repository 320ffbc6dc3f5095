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
package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	EdgarTickersURL = "https://www.sec.gov/files/company_tickers.json"
	EdgarFactsURL   = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"

	// SEC fair access policy allows 10 requests per second
	edgarDefaultRateLimit = 10
)

// EdgarConfig configures the SEC EDGAR client. SEC rejects requests that do
// not identify the caller, so UserAgent should name the application and a
// contact address.
type EdgarConfig struct {
	Config

	// TickersURL and FactsURL override the public endpoints; FactsURL must
	// contain a single %s verb for the padded CIK
	TickersURL string
	FactsURL   string
}

type edgarTicker struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Edgar resolves ticker symbols to SEC filer identifiers (CIK) and downloads
// XBRL company facts
type Edgar struct {
	tickersURL string
	factsURL   string
	client     *resty.Client
	limiter    *rate.Limiter

	loadMu sync.Mutex
	ciks   *haxmap.Map[string, string]
}

func NewEdgar(cfg EdgarConfig) *Edgar {
	tickersURL := cfg.TickersURL
	if tickersURL == "" {
		tickersURL = EdgarTickersURL
	}

	factsURL := cfg.FactsURL
	if factsURL == "" {
		factsURL = EdgarFactsURL
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = edgarDefaultRateLimit
	}

	return &Edgar{
		tickersURL: tickersURL,
		factsURL:   factsURL,
		client:     newClient(cfg.Config),
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), 1),
		ciks:       haxmap.New[string, string](),
	}
}

// PadCIK formats a numeric filer id as the 10 digit zero padded string SEC
// uses in its urls
func PadCIK(cik int64) string {
	return fmt.Sprintf("%010d", cik)
}

// LookupCIK returns the zero padded CIK for ticker. Matching is case
// insensitive. The ticker directory is downloaded once per Edgar instance.
func (edgar *Edgar) LookupCIK(ctx context.Context, ticker string) (string, error) {
	if err := edgar.loadTickers(ctx); err != nil {
		return "", err
	}

	cik, ok := edgar.ciks.Get(strings.ToUpper(strings.TrimSpace(ticker)))
	if !ok {
		return "", fmt.Errorf("%w: %s is not in the SEC ticker directory", ErrTickerNotFound, ticker)
	}

	return cik, nil
}

func (edgar *Edgar) loadTickers(ctx context.Context) error {
	edgar.loadMu.Lock()
	defer edgar.loadMu.Unlock()

	if edgar.ciks.Len() > 0 {
		return nil
	}

	logger := zerolog.Ctx(ctx)

	body, err := edgar.get(ctx, edgar.tickersURL)
	if err != nil {
		return err
	}

	directory := make(map[string]edgarTicker)
	if err := json.Unmarshal(body, &directory); err != nil {
		logger.Error().Err(err).Str("URL", edgar.tickersURL).Msg("could not decode SEC ticker directory")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	for _, entry := range directory {
		ticker := strings.ToUpper(entry.Ticker)
		if _, exists := edgar.ciks.Get(ticker); !exists {
			edgar.ciks.Set(ticker, PadCIK(entry.CIK))
		}
	}

	logger.Debug().Int("NumTickers", len(directory)).Msg("loaded SEC ticker directory")
	return nil
}

// CompanyFacts downloads the XBRL facts document for a padded CIK. A filer
// without facts is reported as ErrNotFound.
func (edgar *Edgar) CompanyFacts(ctx context.Context, cik string) (gjson.Result, error) {
	url := fmt.Sprintf(edgar.factsURL, cik)

	body, err := edgar.get(ctx, url)
	if err != nil {
		return gjson.Result{}, err
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid json from %s", ErrDecode, url)
	}

	return gjson.ParseBytes(body), nil
}

func (edgar *Edgar) get(ctx context.Context, url string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	if err := edgar.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := edgar.client.R().SetContext(ctx).Get(url)
	if err != nil {
		logger.Error().Err(err).Str("URL", url).Msg("resty returned an error when querying SEC")
		return nil, err
	}

	if err := checkResponse(resp); err != nil {
		logger.Warn().Int("StatusCode", resp.StatusCode()).Str("URL", url).Msg("SEC returned an invalid HTTP response")
		return nil, err
	}

	return resp.Body(), nil
}
