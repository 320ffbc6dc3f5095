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
package fundamentals_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/penny-vault/pvstock/data"
	"github.com/penny-vault/pvstock/fundamentals"
	"github.com/penny-vault/pvstock/provider"
)

// factsDocument renders a company facts document with one tag per entry in
// tags, each reporting the given fiscal year values from a 10-K
func factsDocument(taxonomy string, tags map[string]map[int]float64) gjson.Result {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]string, 0, len(tags))
	for _, name := range names {
		records := []string{}
		for year, val := range tags[name] {
			records = append(records, fmt.Sprintf(`{"fy": %d, "end": "%d-12-31", "val": %v, "form": "10-K"}`, year, year, val))
		}
		entries = append(entries, fmt.Sprintf(`%q: {"units": {"USD": [%s]}}`, name, strings.Join(records, ",")))
	}

	return gjson.Parse(fmt.Sprintf(`{"cik": 1, "facts": {%q: {%s}}}`, taxonomy, strings.Join(entries, ",")))
}

type fakeFacts struct {
	ciks     map[string]string
	facts    map[string]gjson.Result
	factsErr error
}

func (f *fakeFacts) LookupCIK(_ context.Context, ticker string) (string, error) {
	cik, ok := f.ciks[ticker]
	if !ok {
		return "", fmt.Errorf("%w: %s", provider.ErrTickerNotFound, ticker)
	}
	return cik, nil
}

func (f *fakeFacts) CompanyFacts(_ context.Context, cik string) (gjson.Result, error) {
	if f.factsErr != nil {
		return gjson.Result{}, f.factsErr
	}

	facts, ok := f.facts[cik]
	if !ok {
		return gjson.Result{}, &provider.HTTPError{StatusCode: 404, URL: cik}
	}
	return facts, nil
}

type fakeStore struct {
	calls   int
	records []*data.Fundamental
	err     error
}

func (s *fakeStore) UpsertFundamentals(_ context.Context, records []*data.Fundamental) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.records = append(s.records, records...)
	return len(records), nil
}

var _ = Describe("Normalizer", func() {
	Describe("Normalize", func() {
		It("derives ratios only when their inputs exist", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{
				"Revenues":      {2021: 1000, 2022: 1200},
				"CostOfRevenue": {2021: 600},
				"NetIncomeLoss": {2022: 100},
				"WeightedAverageNumberOfDilutedSharesOutstanding": {2022: 50},
			})

			result := fundamentals.Normalize("TEST", facts)
			Expect(result.Status).To(Equal(fundamentals.StatusPartial))
			Expect(result.OK()).To(BeTrue())
			Expect(result.Taxonomy).To(Equal("us-gaap"))
			Expect(result.Records).To(HaveLen(2))

			y2021 := result.Records[0]
			Expect(y2021.Year).To(Equal(2021))
			Expect(y2021.GrossMargin).To(HaveValue(Equal(0.4)))
			Expect(y2021.EPS).To(BeNil())
			Expect(y2021.NetMargin).To(BeNil())
			Expect(y2021.NetIncome).To(BeNil())

			y2022 := result.Records[1]
			Expect(y2022.Year).To(Equal(2022))
			Expect(y2022.GrossMargin).To(BeNil())
			Expect(y2022.EPS).To(HaveValue(Equal(2.0)))
			Expect(y2022.NetMargin).To(HaveValue(Equal(0.0833)))
			Expect(y2022.Revenue).To(HaveValue(Equal(int64(1200))))
		})

		It("only emits years that report revenue", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{
				"Revenues": {2022: 10},
				"Assets":   {2020: 5, 2022: 20},
			})

			result := fundamentals.Normalize("TEST", facts)
			Expect(result.Records).To(HaveLen(1))
			Expect(result.Records[0].Year).To(Equal(2022))
			Expect(result.Records[0].TotalAssets).To(HaveValue(Equal(int64(20))))
		})

		It("computes free cash flow with capex treated as an outflow", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{
				"Revenues": {2021: 10, 2022: 10, 2023: 10},
				"NetCashProvidedByUsedInOperatingActivities": {2021: 500, 2022: 500},
				"PaymentsToAcquirePropertyPlantAndEquipment": {2021: 120, 2023: 50},
			})

			result := fundamentals.Normalize("TEST", facts)
			Expect(result.Records[0].FreeCashFlow).To(HaveValue(Equal(int64(380))))
			Expect(result.Records[1].FreeCashFlow).To(HaveValue(Equal(int64(500))))
			Expect(result.Records[2].FreeCashFlow).To(BeNil())
		})

		It("computes the debt to asset ratio and operating margin", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{
				"Revenues":            {2021: 800},
				"OperatingIncomeLoss": {2021: 200},
				"Assets":              {2021: 3000},
				"Liabilities":         {2021: 1000},
			})

			record := fundamentals.Normalize("TEST", facts).Records[0]
			Expect(record.OperatingMargin).To(HaveValue(Equal(0.25)))
			Expect(record.DebtToAssetRatio).To(HaveValue(Equal(0.3333)))
		})

		It("leaves ratios empty when revenue is zero", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{
				"Revenues":      {2021: 0},
				"CostOfRevenue": {2021: 10},
				"NetIncomeLoss": {2021: 5},
			})

			record := fundamentals.Normalize("TEST", facts).Records[0]
			Expect(record.GrossMargin).To(BeNil())
			Expect(record.NetMargin).To(BeNil())
		})

		It("falls back to IFRS", func() {
			facts := factsDocument("ifrs-full", map[string]map[int]float64{
				"Revenue":     {2022: 2000},
				"CostOfSales": {2022: 500},
			})

			result := fundamentals.Normalize("TSM", facts)
			Expect(result.Taxonomy).To(Equal("ifrs-full"))
			Expect(result.Records).To(HaveLen(1))
			Expect(result.Records[0].GrossMargin).To(HaveValue(Equal(0.75)))
		})

		It("reports filers without a supported taxonomy", func() {
			facts := factsDocument("dei", map[string]map[int]float64{"EntityCommonStockSharesOutstanding": {2022: 1}})

			result := fundamentals.Normalize("TEST", facts)
			Expect(result.Status).To(Equal(fundamentals.StatusNoData))
			Expect(result.Err).To(MatchError(fundamentals.ErrTaxonomyMissing))
			Expect(result.Records).To(BeEmpty())
		})

		It("produces no records without revenue", func() {
			facts := factsDocument("us-gaap", map[string]map[int]float64{"Assets": {2022: 1}})

			result := fundamentals.Normalize("TEST", facts)
			Expect(result.Status).To(Equal(fundamentals.StatusNoData))
			Expect(errors.Is(result.Err, fundamentals.ErrNoRevenue)).To(BeTrue())
			Expect(result.Records).To(BeEmpty())
			Expect(result.OK()).To(BeFalse())
		})

		It("is complete when every metric is reported", func() {
			tags := map[string]map[int]float64{}
			for _, group := range fundamentals.Groups {
				for _, metric := range group.Metrics {
					tags[fundamentals.USGAAP.Tags[metric][0]] = map[int]float64{2022: 10}
				}
			}

			result := fundamentals.Normalize("TEST", factsDocument("us-gaap", tags))
			Expect(result.Status).To(Equal(fundamentals.StatusComplete))
			Expect(result.MissingMetrics).To(BeEmpty())
		})
	})

	Describe("Refresh", func() {
		var (
			source *fakeFacts
			store  *fakeStore
		)

		BeforeEach(func() {
			source = &fakeFacts{
				ciks: map[string]string{"AAPL": "0000320193", "NOFACTS": "0000000002"},
				facts: map[string]gjson.Result{
					"0000320193": factsDocument("us-gaap", map[string]map[int]float64{
						"Revenues": {2021: 1000, 2022: 1200},
					}),
				},
			}
			store = &fakeStore{}
		})

		It("writes every record in one batch", func() {
			result := fundamentals.NewNormalizer(source, store).Refresh(context.Background(), " aapl ")
			Expect(result.OK()).To(BeTrue())
			Expect(result.Ticker).To(Equal("AAPL"))
			Expect(result.CIK).To(Equal("0000320193"))
			Expect(store.calls).To(Equal(1))
			Expect(store.records).To(HaveLen(2))
		})

		It("reports unknown tickers as no data without writing", func() {
			result := fundamentals.NewNormalizer(source, store).Refresh(context.Background(), "ZZZZ")
			Expect(result.Status).To(Equal(fundamentals.StatusNoData))
			Expect(errors.Is(result.Err, provider.ErrTickerNotFound)).To(BeTrue())
			Expect(store.calls).To(BeZero())
		})

		It("reports a missing facts document as no data", func() {
			result := fundamentals.NewNormalizer(source, store).Refresh(context.Background(), "NOFACTS")
			Expect(result.Status).To(Equal(fundamentals.StatusNoData))
			Expect(errors.Is(result.Err, provider.ErrNotFound)).To(BeTrue())
		})

		It("reports transport errors as failures", func() {
			source.factsErr = &provider.HTTPError{StatusCode: 503, URL: "facts"}
			result := fundamentals.NewNormalizer(source, store).Refresh(context.Background(), "AAPL")
			Expect(result.Status).To(Equal(fundamentals.StatusFailed))
			Expect(result.OK()).To(BeFalse())
		})

		It("reports a failed write as a failure", func() {
			store.err = errors.New("disk full")
			result := fundamentals.NewNormalizer(source, store).Refresh(context.Background(), "AAPL")
			Expect(result.Status).To(Equal(fundamentals.StatusFailed))
			Expect(result.Err).To(MatchError("disk full"))
		})

		It("fetches without writing", func() {
			result := fundamentals.NewNormalizer(source, store).Fetch(context.Background(), "AAPL")
			Expect(result.Records).To(HaveLen(2))
			Expect(store.calls).To(BeZero())
		})
	})
})
