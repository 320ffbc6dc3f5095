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
package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvstock/data"
)

var _ = Describe("Tables", func() {
	It("styles only the first row as the header", func() {
		Expect(tableStyle(0, 0)).To(Equal(headerStyle))
		Expect(tableStyle(0, 3)).To(Equal(headerStyle))
		Expect(tableStyle(1, 0)).To(Equal(cellStyle))
	})

	It("renders price bars under their column headers", func() {
		rendered := priceTable([]*data.PriceBar{{Ticker: "AAPL", Date: "2024-01-02", Close: 185.64, Volume: 1000}}).String()
		Expect(rendered).To(ContainSubstring("DATE"))
		Expect(rendered).To(ContainSubstring("2024-01-02"))
	})
})
