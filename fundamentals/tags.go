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
package fundamentals

import (
	"github.com/tidwall/gjson"
)

// AnnualForms are the SEC form types that carry audited annual figures:
// 10-K for domestic filers, 20-F and 40-F for foreign private issuers
var AnnualForms = map[string]bool{
	"10-K": true,
	"20-F": true,
	"40-F": true,
}

// Resolve extracts a fiscal year to value mapping for one metric from a
// taxonomy node of a company facts document (e.g. facts.us-gaap).
//
// Tags are consulted in priority order and the first tag that reports a year
// owns it; lower priority tags only fill years that are still empty. Within a
// tag only the first unit listed is read and only annual filings count. When
// a tag reports the same fiscal year more than once, as a 10-K does for its
// prior-year comparatives, the value for the latest period end wins. Resolve
// never fails; a taxonomy without any of the tags yields an empty map.
func Resolve(taxonomy gjson.Result, tags []string) map[int]float64 {
	values := make(map[int]float64)

	for _, tag := range tags {
		for year, val := range resolveTag(taxonomy.Get(tag)) {
			if _, seen := values[year]; !seen {
				values[year] = val
			}
		}
	}

	return values
}

func resolveTag(fact gjson.Result) map[int]float64 {
	if !fact.Exists() {
		return nil
	}

	var records gjson.Result
	fact.Get("units").ForEach(func(_, unit gjson.Result) bool {
		records = unit
		return false
	})

	if !records.IsArray() {
		return nil
	}

	values := make(map[int]float64)
	ends := make(map[int]string)

	for _, rec := range records.Array() {
		if !AnnualForms[rec.Get("form").String()] {
			continue
		}

		fy := rec.Get("fy")
		val := rec.Get("val")
		if fy.Type != gjson.Number || val.Type != gjson.Number {
			continue
		}

		year := int(fy.Int())
		end := rec.Get("end").String()
		if prev, ok := ends[year]; ok && end < prev {
			continue
		}

		values[year] = val.Float()
		ends[year] = end
	}

	return values
}
