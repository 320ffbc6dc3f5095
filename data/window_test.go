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
package data_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstock/data"
)

func dailyBars(from, to string) []*data.PriceBar {
	start, _ := time.Parse(data.DateLayout, from)
	end, _ := time.Parse(data.DateLayout, to)

	bars := []*data.PriceBar{}
	for dt := start; !dt.After(end); dt = dt.AddDate(0, 0, 1) {
		bars = append(bars, &data.PriceBar{Ticker: "TEST", Date: dt.Format(data.DateLayout)})
	}
	return bars
}

func dates(bars []*data.PriceBar) []string {
	res := make([]string, len(bars))
	for idx, bar := range bars {
		res[idx] = bar.Date
	}
	return res
}

var _ = Describe("Window", func() {
	DescribeTable("parses chart periods",
		func(input string, expected data.Period, name string) {
			period, err := data.ParsePeriod(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(period).To(Equal(expected))
			Expect(period.String()).To(Equal(name))
		},
		Entry("one month", "1M", data.Period1M, "1M"),
		Entry("six months", "6m", data.Period6M, "6M"),
		Entry("one year", "1Y", data.Period1Y, "1Y"),
		Entry("everything", "all", data.PeriodAll, "ALL"),
	)

	It("rejects unknown periods", func() {
		_, err := data.ParsePeriod("2W")
		Expect(err).To(MatchError(data.ErrUnknownPeriod))
	})

	It("clamps month arithmetic to the end of the month", func() {
		mar31 := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
		Expect(data.AddMonths(mar31, -1)).To(Equal(time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)))

		leap := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		Expect(data.AddMonths(leap, -1)).To(Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
		Expect(data.AddMonths(leap, -13)).To(Equal(time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)))
	})

	It("returns every bar in date order for ALL", func() {
		bars := dailyBars("2023-01-01", "2023-01-05")
		bars[0], bars[4] = bars[4], bars[0]
		window := data.Window(bars, data.PeriodAll, 3)
		Expect(dates(window)).To(Equal([]string{"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05"}))
	})

	It("selects the last month with an exclusive start and inclusive end", func() {
		window := data.Window(dailyBars("2023-01-01", "2023-03-31"), data.Period1M, 0)
		Expect(window[0].Date).To(Equal("2023-03-01"))
		Expect(window[len(window)-1].Date).To(Equal("2023-03-31"))
	})

	It("pages back by whole periods", func() {
		window := data.Window(dailyBars("2023-01-01", "2023-03-31"), data.Period1M, 1)
		Expect(window[0].Date).To(Equal("2023-01-29"))
		Expect(window[len(window)-1].Date).To(Equal("2023-02-28"))
	})

	It("treats a negative offset as zero", func() {
		bars := dailyBars("2023-01-01", "2023-03-31")
		Expect(dates(data.Window(bars, data.Period1M, -2))).To(Equal(dates(data.Window(bars, data.Period1M, 0))))
	})

	It("returns an empty window when paged past the history", func() {
		Expect(data.Window(dailyBars("2023-01-01", "2023-03-31"), data.Period1Y, 2)).To(BeEmpty())
		Expect(data.Window(nil, data.Period1M, 0)).To(BeEmpty())
	})
})
