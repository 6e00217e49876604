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

package panel

import (
	"fmt"
	"time"
)

type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Period is one discrete time bucket of the panel index: an ISO-8601
// calendar week or a calendar month. Periods of the same frequency are
// totally ordered by (Year, Num).
type Period struct {
	Freq Frequency
	Year int
	Num  int // ISO week number or month number
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time, freq Frequency) Period {
	if freq == Weekly {
		year, week := t.ISOWeek()
		return Period{Freq: Weekly, Year: year, Num: week}
	}

	return Period{Freq: Monthly, Year: t.Year(), Num: int(t.Month())}
}

// AvailabilityPeriod returns the first period in which a disclosure filed at
// filingDate may be used: the period immediately following the one that
// contains the filing date. A filing is never usable in its own period.
func AvailabilityPeriod(filingDate time.Time, freq Frequency) Period {
	return PeriodOf(filingDate, freq).Next()
}

// Next returns the immediately following period.
func (p Period) Next() Period {
	switch p.Freq {
	case Weekly:
		if p.Num >= isoWeeksInYear(p.Year) {
			return Period{Freq: Weekly, Year: p.Year + 1, Num: 1}
		}

		return Period{Freq: Weekly, Year: p.Year, Num: p.Num + 1}
	default:
		if p.Num >= 12 {
			return Period{Freq: Monthly, Year: p.Year + 1, Num: 1}
		}

		return Period{Freq: Monthly, Year: p.Year, Num: p.Num + 1}
	}
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}

	return p.Num < other.Num
}

// After reports whether p follows other.
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// String renders the period label: YYYY-WW for weeks, YYYY-MM for months.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Num)
}

// isoWeeksInYear returns 52 or 53; December 28 always falls in the last ISO
// week of its year.
func isoWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}
