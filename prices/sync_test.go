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
package prices_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstock/data"
	"github.com/penny-vault/pvstock/library"
	"github.com/penny-vault/pvstock/prices"
	"github.com/penny-vault/pvstock/provider"
)

type fakeHistory struct {
	quotes   map[string][]*data.Quote
	requests []time.Time
	err      error
}

func (f *fakeHistory) History(_ context.Context, ticker string, start time.Time) ([]*data.Quote, error) {
	f.requests = append(f.requests, start)
	if f.err != nil {
		return nil, f.err
	}

	quotes, ok := f.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrTickerNotFound, ticker)
	}
	return quotes, nil
}

func quote(date string, close float64) *data.Quote {
	dt, err := time.Parse(data.DateLayout, date)
	Expect(err).NotTo(HaveOccurred())
	return &data.Quote{Date: dt, Open: close, High: close, Low: close, Close: close, Volume: 100}
}

var _ = Describe("Syncer", func() {
	var (
		ctx       context.Context
		source    *fakeHistory
		myLibrary *library.Library
		syncer    *prices.Syncer
	)

	BeforeEach(func() {
		ctx = context.Background()
		source = &fakeHistory{quotes: map[string][]*data.Quote{}}
		myLibrary = library.New(filepath.Join(GinkgoT().TempDir(), "stock.db"))
		Expect(myLibrary.Init(ctx)).To(Succeed())
		syncer = prices.NewSyncer(source, myLibrary)
	})

	It("overwrites a re-delivered bar on the next sync", func() {
		source.quotes["AAPL"] = []*data.Quote{
			quote("2020-01-01", 100),
			quote("2020-01-02", 101),
			quote("2020-01-03", 99),
		}
		Expect(syncer.FullSync(ctx, "AAPL")).To(BeTrue())

		source.quotes["AAPL"] = []*data.Quote{quote("2020-01-02", 105)}
		Expect(syncer.FullSync(ctx, "AAPL")).To(BeTrue())

		bars, err := myLibrary.Prices(ctx, "AAPL")
		Expect(err).NotTo(HaveOccurred())
		Expect(bars).To(HaveLen(3))
		Expect(bars[1].Close).To(Equal(105.0))
	})

	It("returns false for tickers the provider does not know", func() {
		Expect(syncer.FullSync(ctx, "ZZZZ")).To(BeFalse())
		Expect(myLibrary.Tickers(ctx)).To(BeEmpty())
	})

	It("returns false when the provider has no rows", func() {
		source.quotes["EMPTY"] = []*data.Quote{}
		Expect(syncer.FullSync(ctx, "EMPTY")).To(BeFalse())
	})

	It("passes through unexpected provider errors", func() {
		source.err = &provider.HTTPError{StatusCode: 500, URL: "chart"}
		ok, err := syncer.FullSync(ctx, "AAPL")
		Expect(ok).To(BeFalse())
		Expect(err).To(HaveOccurred())
	})

	It("resumes the day after the last stored date", func() {
		source.quotes["AAPL"] = []*data.Quote{}
		last := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

		numRows, err := syncer.IncrementalSync(ctx, "AAPL", last)
		Expect(err).NotTo(HaveOccurred())
		Expect(numRows).To(BeZero())
		Expect(source.requests).To(Equal([]time.Time{time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)}))
		Expect(myLibrary.Prices(ctx, "AAPL")).To(BeEmpty())
	})

	It("does not ask the provider when the last stored bar is from today", func() {
		source.err = errors.New("start date cannot be after end date")
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

		numRows, err := syncer.IncrementalSync(ctx, "AAPL", today)
		Expect(err).NotTo(HaveOccurred())
		Expect(numRows).To(BeZero())
		Expect(source.requests).To(BeEmpty())
	})

	It("drops bars on or before the last stored date", func() {
		source.quotes["AAPL"] = []*data.Quote{
			quote("2023-05-31", 1),
			quote("2023-06-01", 2),
			quote("2023-06-02", 3),
		}

		numRows, err := syncer.IncrementalSync(ctx, "AAPL", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(numRows).To(Equal(1))

		bars, err := myLibrary.Prices(ctx, "AAPL")
		Expect(err).NotTo(HaveOccurred())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Date).To(Equal("2023-06-02"))
	})

	Describe("Sync", func() {
		It("performs a full sync when nothing is stored", func() {
			source.quotes["AAPL"] = []*data.Quote{quote("2020-01-01", 1), quote("2020-01-02", 2)}

			result, err := syncer.Sync(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Mode).To(Equal(prices.ModeFull))
			Expect(result.NumRows).To(Equal(2))
			Expect(source.requests).To(Equal([]time.Time{{}}))
		})

		It("matches a full sync for a ticker with no stored rows", func() {
			source.quotes["AAPL"] = []*data.Quote{quote("2020-01-01", 1), quote("2020-01-02", 2)}

			_, err := syncer.IncrementalSync(ctx, "AAPL", time.Time{})
			Expect(err).NotTo(HaveOccurred())
			incremental, err := myLibrary.Prices(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())

			Expect(myLibrary.DeleteTicker(ctx, "AAPL")).To(BeTrue())
			Expect(syncer.FullSync(ctx, "AAPL")).To(BeTrue())
			full, err := myLibrary.Prices(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())

			Expect(incremental).To(Equal(full))
		})

		It("resumes incrementally and reports when already current", func() {
			source.quotes["AAPL"] = []*data.Quote{quote("2023-05-31", 1), quote("2023-06-01", 2)}
			_, err := syncer.Sync(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())

			result, err := syncer.Sync(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Mode).To(Equal(prices.ModeIncremental))
			Expect(result.Since).To(Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
			Expect(result.UpToDate).To(BeTrue())
			Expect(result.NumRows).To(BeZero())
			Expect(source.requests[1]).To(Equal(time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)))
		})

		It("fails when an incremental sync cannot reach the provider", func() {
			source.quotes["AAPL"] = []*data.Quote{quote("2023-06-01", 2)}
			_, err := syncer.Sync(ctx, "AAPL")
			Expect(err).NotTo(HaveOccurred())

			source.err = errors.New("connection reset")
			_, err = syncer.Sync(ctx, "AAPL")
			Expect(err).To(MatchError("connection reset"))
		})
	})
})
