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
	"math"
	"time"

	"github.com/rs/zerolog"
)

// DateLayout is the calendar-day format used for price dates everywhere in the library
const DateLayout = "2006-01-02"

// Quote is a single daily observation as reported by a price provider, before
// it is harmonized into a PriceBar
type Quote struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Dividend float64
	Split    float64
}

type PriceBar struct {
	Ticker      string  `db:"ticker" json:"ticker" csv:"ticker"`
	Date        string  `db:"date" json:"date" csv:"date"`
	Open        float64 `db:"open" json:"open" csv:"open"`
	High        float64 `db:"high" json:"high" csv:"high"`
	Low         float64 `db:"low" json:"low" csv:"low"`
	Close       float64 `db:"close" json:"close" csv:"close"`
	Volume      int64   `db:"volume" json:"volume" csv:"volume"`
	Dividends   float64 `db:"dividends" json:"dividends" csv:"dividends"`
	StockSplits float64 `db:"stock_splits" json:"stockSplits" csv:"stock_splits"`
}

// NewPriceBar harmonizes a provider quote: the date is reduced to a calendar
// day in the quote's location, prices, dividends and splits are rounded to 2
// decimals and volume is coerced to a non-negative integer
func NewPriceBar(ticker string, quote *Quote) *PriceBar {
	volume := int64(math.Round(quote.Volume))
	if volume < 0 || math.IsNaN(quote.Volume) {
		volume = 0
	}

	return &PriceBar{
		Ticker:      ticker,
		Date:        quote.Date.Format(DateLayout),
		Open:        Round(quote.Open, 2),
		High:        Round(quote.High, 2),
		Low:         Round(quote.Low, 2),
		Close:       Round(quote.Close, 2),
		Volume:      volume,
		Dividends:   Round(quote.Dividend, 2),
		StockSplits: Round(quote.Split, 2),
	}
}

// EventDate parses the bar date as midnight UTC
func (bar *PriceBar) EventDate() (time.Time, error) {
	return time.Parse(DateLayout, bar.Date)
}

func (bar *PriceBar) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", bar.Ticker)
	e.Str("Date", bar.Date)
	e.Float64("Open", bar.Open)
	e.Float64("High", bar.High)
	e.Float64("Low", bar.Low)
	e.Float64("Close", bar.Close)
	e.Int64("Volume", bar.Volume)
	e.Float64("Dividends", bar.Dividends)
	e.Float64("StockSplits", bar.StockSplits)
}
