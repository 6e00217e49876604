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
	"sort"
	"time"

	"github.com/penny-vault/pvpanel/data"
)

// AlignedRow is one (ticker, period) row after temporal alignment and
// before factor derivation. Price fields are the period's closing
// observation, valuation fields are point-in-period (never forward-filled),
// and Fund is the most recently available disclosure carried forward.
type AlignedRow struct {
	Ticker string
	Period Period
	Date   time.Time

	Close    float64
	AdjClose float64

	MarketCap *float64
	PE        *float64
	PB        *float64
	PS        *float64

	Fund *data.DisclosureRecord
}

// Align builds the regular period index for every ticker from the three raw
// series. The price series is the spine: a (ticker, period) with no price
// observation yields no row at all. No value on any returned row derives
// from information dated inside or after its period, except the price and
// valuation fields themselves, which the factor deriver lags by one further
// period before they become features.
func Align(cfg Config, prices []data.PriceObservation, valuations []data.ValuationObservation, disclosures []data.DisclosureRecord) []*AlignedRow {
	freq := cfg.Frequency

	type priceKey struct {
		ticker string
		period Period
	}

	// reduce each raw series to one observation per (ticker, period),
	// keeping the latest-dated observation inside the period; equal dates
	// resolve to the later row in fetch order
	closing := make(map[priceKey]data.PriceObservation)
	tickerPeriods := make(map[string][]Period)

	for _, obs := range prices {
		key := priceKey{ticker: obs.Ticker, period: PeriodOf(obs.Date, freq)}
		if prev, ok := closing[key]; ok {
			if obs.Date.Before(prev.Date) {
				continue
			}
		} else {
			tickerPeriods[obs.Ticker] = append(tickerPeriods[obs.Ticker], key.period)
		}

		closing[key] = obs
	}

	valuation := make(map[priceKey]data.ValuationObservation)
	valuationSeen := make(map[priceKey]time.Time)

	for _, obs := range valuations {
		key := priceKey{ticker: obs.Ticker, period: PeriodOf(obs.Date, freq)}
		if prev, ok := valuationSeen[key]; ok && obs.Date.Before(prev) {
			continue
		}

		valuationSeen[key] = obs.Date
		valuation[key] = obs
	}

	// order disclosures by filing date per ticker; the availability walk
	// below carries the most recent available record forward
	byTicker := make(map[string][]data.DisclosureRecord)
	for _, rec := range disclosures {
		byTicker[rec.Ticker] = append(byTicker[rec.Ticker], rec)
	}

	for ticker := range byTicker {
		recs := byTicker[ticker]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].FilingDate.Before(recs[j].FilingDate)
		})
	}

	tickers := make([]string, 0, len(tickerPeriods))
	for ticker := range tickerPeriods {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	rows := make([]*AlignedRow, 0, len(closing))

	for _, ticker := range tickers {
		periods := tickerPeriods[ticker]
		sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

		recs := byTicker[ticker]
		nextRec := 0

		var current *data.DisclosureRecord

		for _, period := range periods {
			// advance to the last disclosure available at this period
			for nextRec < len(recs) && !AvailabilityPeriod(recs[nextRec].FilingDate, freq).After(period) {
				current = &recs[nextRec]
				nextRec++
			}

			key := priceKey{ticker: ticker, period: period}
			price := closing[key]

			row := &AlignedRow{
				Ticker:   ticker,
				Period:   period,
				Date:     price.Date,
				Close:    price.Close,
				AdjClose: price.AdjClose,
				Fund:     current,
			}

			if val, ok := valuation[key]; ok {
				row.MarketCap = val.MarketCap
				row.PE = val.PE
				row.PB = val.PB
				row.PS = val.PS
			}

			rows = append(rows, row)
		}
	}

	return rows
}
