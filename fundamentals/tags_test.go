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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/penny-vault/pvstock/fundamentals"
)

var _ = Describe("Resolve", func() {
	It("lets the first tag in priority order own a year", func() {
		taxonomy := gjson.Parse(`{
			"SalesRevenueNet": {"units": {"USD": [
				{"fy": 2017, "end": "2017-09-30", "val": 229234, "form": "10-K"}
			]}},
			"Revenues": {"units": {"USD": [
				{"fy": 2017, "end": "2017-09-30", "val": 1, "form": "10-K"},
				{"fy": 2018, "end": "2018-09-29", "val": 265595, "form": "10-K"}
			]}}
		}`)

		values := fundamentals.Resolve(taxonomy, []string{"SalesRevenueNet", "Revenues"})
		Expect(values).To(Equal(map[int]float64{2017: 229234, 2018: 265595}))
	})

	It("keeps the latest period end when a filing repeats comparatives", func() {
		taxonomy := gjson.Parse(`{"NetIncomeLoss": {"units": {"USD": [
			{"fy": 2022, "end": "2020-09-26", "val": 57411, "form": "10-K"},
			{"fy": 2022, "end": "2022-09-24", "val": 99803, "form": "10-K"},
			{"fy": 2022, "end": "2021-09-25", "val": 94680, "form": "10-K"}
		]}}}`)

		values := fundamentals.Resolve(taxonomy, []string{"NetIncomeLoss"})
		Expect(values).To(Equal(map[int]float64{2022: 99803}))
	})

	It("only reads annual filings", func() {
		taxonomy := gjson.Parse(`{"Revenues": {"units": {"USD": [
			{"fy": 2022, "end": "2022-06-30", "val": 5, "form": "10-Q"},
			{"fy": 2021, "end": "2021-12-31", "val": 7, "form": "20-F"},
			{"fy": 2020, "end": "2020-12-31", "val": 9, "form": "40-F"},
			{"fy": 2019, "end": "2019-12-31", "val": 11, "form": "8-K"}
		]}}}`)

		values := fundamentals.Resolve(taxonomy, []string{"Revenues"})
		Expect(values).To(Equal(map[int]float64{2021: 7, 2020: 9}))
	})

	It("skips records without a fiscal year or value", func() {
		taxonomy := gjson.Parse(`{"Revenues": {"units": {"USD": [
			{"end": "2022-12-31", "val": 5, "form": "10-K"},
			{"fy": null, "end": "2022-12-31", "val": 5, "form": "10-K"},
			{"fy": 2021, "end": "2021-12-31", "form": "10-K"},
			{"fy": 2020, "end": "2020-12-31", "val": 3, "form": "10-K"}
		]}}}`)

		values := fundamentals.Resolve(taxonomy, []string{"Revenues"})
		Expect(values).To(Equal(map[int]float64{2020: 3}))
	})

	It("uses only the first unit listed", func() {
		taxonomy := gjson.Parse(`{"Revenues": {"units": {
			"EUR": [{"fy": 2021, "end": "2021-12-31", "val": 100, "form": "20-F"}],
			"USD": [{"fy": 2021, "end": "2021-12-31", "val": 120, "form": "20-F"},
			        {"fy": 2020, "end": "2020-12-31", "val": 110, "form": "20-F"}]
		}}}`)

		values := fundamentals.Resolve(taxonomy, []string{"Revenues"})
		Expect(values).To(Equal(map[int]float64{2021: 100}))
	})

	It("skips absent tags and tags with no units", func() {
		taxonomy := gjson.Parse(`{
			"CostOfRevenue": {"units": {}},
			"CostOfGoodsAndServicesSold": {"label": "no units"},
			"CostOfGoodsSold": {"units": {"USD": [{"fy": 2021, "end": "2021-12-31", "val": 4, "form": "10-K"}]}}
		}`)

		values := fundamentals.Resolve(taxonomy, fundamentals.USGAAP.Tags[fundamentals.COGS])
		Expect(values).To(Equal(map[int]float64{2021: 4}))
	})

	It("returns an empty map when nothing resolves", func() {
		values := fundamentals.Resolve(gjson.Parse(`{}`), []string{"Revenues"})
		Expect(values).NotTo(BeNil())
		Expect(values).To(BeEmpty())

		values = fundamentals.Resolve(gjson.Result{}, nil)
		Expect(values).To(BeEmpty())
	})
})
