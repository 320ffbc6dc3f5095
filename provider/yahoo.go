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
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvstock/data"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const YahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo downloads daily price history from the Yahoo Finance chart API
type Yahoo struct {
	baseURL string
	client  *resty.Client
}

func NewYahoo(cfg Config) *Yahoo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = YahooBaseURL
	}

	return &Yahoo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newClient(cfg),
	}
}

// History returns the daily bars for ticker. A zero start requests the full
// available history, otherwise only bars on or after start are requested.
// Bars without a close price are skipped. An unknown ticker is reported as
// ErrTickerNotFound.
func (yahoo *Yahoo) History(ctx context.Context, ticker string, start time.Time) ([]*data.Quote, error) {
	logger := zerolog.Ctx(ctx)

	symbol := strings.ReplaceAll(strings.ReplaceAll(ticker, ".", "-"), "/", "-")
	url := fmt.Sprintf("%s/v8/finance/chart/%s", yahoo.baseURL, symbol)

	req := yahoo.client.R().
		SetContext(ctx).
		SetQueryParam("interval", "1d").
		SetQueryParam("events", "div,splits").
		SetQueryParam("includeAdjustedClose", "false")

	if start.IsZero() {
		req.SetQueryParam("range", "max")
	} else {
		req.SetQueryParam("period1", strconv.FormatInt(start.Unix(), 10))
		req.SetQueryParam("period2", strconv.FormatInt(time.Now().Unix(), 10))
	}

	resp, err := req.Get(url)
	if err != nil {
		logger.Error().Err(err).Str("Ticker", ticker).Msg("resty returned an error when querying yahoo chart")
		return nil, err
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		if err := checkResponse(resp); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: invalid json from %s", ErrDecode, url)
	}

	chart := gjson.GetBytes(body, "chart")
	if code := chart.Get("error.code").String(); code != "" {
		if strings.EqualFold(code, "Not Found") || resp.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}

		logger.Error().Str("Ticker", ticker).Str("Code", code).Str("Description", chart.Get("error.description").String()).Msg("yahoo returned an error")
		if err := checkResponse(resp); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrDecode, code)
	}

	if err := checkResponse(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("Ticker", ticker).Str("URL", url).Msg("yahoo returned an invalid HTTP response")
		return nil, err
	}

	return parseChart(chart.Get("result.0"))
}

func parseChart(result gjson.Result) ([]*data.Quote, error) {
	if !result.Exists() {
		return []*data.Quote{}, nil
	}

	loc := time.UTC
	if tzName := result.Get("meta.exchangeTimezoneName").String(); tzName != "" {
		if tz, err := time.LoadLocation(tzName); err == nil {
			loc = tz
		}
	}

	day := func(ts int64) string {
		return time.Unix(ts, 0).In(loc).Format(data.DateLayout)
	}

	dividends := make(map[string]float64)
	result.Get("events.dividends").ForEach(func(_, event gjson.Result) bool {
		dividends[day(event.Get("date").Int())] += event.Get("amount").Float()
		return true
	})

	splits := make(map[string]float64)
	result.Get("events.splits").ForEach(func(_, event gjson.Result) bool {
		denominator := event.Get("denominator").Float()
		if denominator != 0 {
			splits[day(event.Get("date").Int())] = event.Get("numerator").Float() / denominator
		}
		return true
	})

	timestamps := result.Get("timestamp").Array()
	indicators := result.Get("indicators.quote.0")
	opens := indicators.Get("open").Array()
	highs := indicators.Get("high").Array()
	lows := indicators.Get("low").Array()
	closes := indicators.Get("close").Array()
	volumes := indicators.Get("volume").Array()

	at := func(values []gjson.Result, idx int) float64 {
		if idx < len(values) {
			return values[idx].Float()
		}
		return 0
	}

	quotes := make([]*data.Quote, 0, len(timestamps))
	for idx, ts := range timestamps {
		if idx >= len(closes) || closes[idx].Type == gjson.Null {
			continue
		}

		dt := time.Unix(ts.Int(), 0).In(loc)
		key := dt.Format(data.DateLayout)

		quotes = append(quotes, &data.Quote{
			Date:     time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC),
			Open:     at(opens, idx),
			High:     at(highs, idx),
			Low:      at(lows, idx),
			Close:    closes[idx].Float(),
			Volume:   at(volumes, idx),
			Dividend: dividends[key],
			Split:    splits[key],
		})
	}

	return quotes, nil
}
