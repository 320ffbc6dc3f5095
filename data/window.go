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
package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrUnknownPeriod = errors.New("unknown chart period")

// Period is the span of a chart window measured in months; PeriodAll spans
// the full history
type Period int

const (
	PeriodAll Period = 0
	Period1M  Period = 1
	Period6M  Period = 6
	Period1Y  Period = 12
)

func (p Period) String() string {
	switch p {
	case Period1M:
		return "1M"
	case Period6M:
		return "6M"
	case Period1Y:
		return "1Y"
	case PeriodAll:
		return "ALL"
	default:
		return fmt.Sprintf("%dM", int(p))
	}
}

// ParsePeriod converts one of 1M, 6M, 1Y or ALL (case-insensitive) into a
// Period
func ParsePeriod(s string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1M":
		return Period1M, nil
	case "6M":
		return Period6M, nil
	case "1Y":
		return Period1Y, nil
	case "ALL", "":
		return PeriodAll, nil
	default:
		return PeriodAll, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// AddMonths shifts t by n months. When the target month is shorter than the
// source day the result is clamped to the last day of the target month, so
// Mar 31 minus one month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Window selects the bars a chart shows for period, paged back offset periods
// from the most recent bar. For any period other than PeriodAll the window
// ends at max(date) - offset*period and starts one period earlier; the start
// is exclusive and the end inclusive. Bars are returned in ascending date
// order. A negative offset is treated as 0.
func Window(bars []*PriceBar, period Period, offset int) []*PriceBar {
	if len(bars) == 0 {
		return []*PriceBar{}
	}

	sorted := make([]*PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	if period == PeriodAll {
		return sorted
	}

	if offset < 0 {
		offset = 0
	}

	latest, err := sorted[len(sorted)-1].EventDate()
	if err != nil {
		return []*PriceBar{}
	}

	end := AddMonths(latest, -offset*int(period))
	start := AddMonths(end, -int(period))

	window := make([]*PriceBar, 0, len(sorted))
	for _, bar := range sorted {
		dt, err := bar.EventDate()
		if err != nil {
			continue
		}

		if dt.After(start) && !dt.After(end) {
			window = append(window, bar)
		}
	}

	return window
}
