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

	"github.com/penny-vault/pvpanel/data"
)

// size tier labels, smallest cap to largest
var sizeLabels = []string{
	"Nano-Cap",
	"Micro-Cap",
	"Small-Cap",
	"Mid-Cap",
	"Large-Cap",
	"Mega-Cap",
}

// ClassifySize assigns each panel row a size tier by comparing its market
// cap against percentile thresholds computed over the row's own period.
// Thresholds use only the caps present in that period, so the labels are
// relative to the period's cross-section and never mix information across
// periods. Rows with a null market cap get a null size.
func ClassifySize(cfg Config, rows []*data.PanelRow) {
	cutoffs := cfg.SizeCutoffs
	if len(cutoffs) != len(sizeLabels)-1 {
		cutoffs = DefaultConfig(cfg.Frequency).SizeCutoffs
	}

	byPeriod := make(map[string][]*data.PanelRow)
	for _, row := range rows {
		byPeriod[row.Period] = append(byPeriod[row.Period], row)
	}

	for _, periodRows := range byPeriod {
		caps := make([]float64, 0, len(periodRows))
		for _, row := range periodRows {
			if row.MarketCap != nil {
				caps = append(caps, *row.MarketCap)
			}
		}

		if len(caps) == 0 {
			continue
		}

		sort.Float64s(caps)

		thresholds := make([]float64, len(cutoffs))
		for idx, pct := range cutoffs {
			thresholds[idx] = quantile(caps, pct/100)
		}

		for _, row := range periodRows {
			if row.MarketCap == nil {
				continue
			}

			label := sizeLabels[len(sizeLabels)-1]

			for idx, thresh := range thresholds {
				if *row.MarketCap <= thresh {
					label = sizeLabels[idx]
					break
				}
			}

			row.Size = &label
		}
	}
}

// quantile linearly interpolates the q-th quantile of an ascending-sorted
// slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(pos)

	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := pos - float64(lower)

	return sorted[lower] + (sorted[lower+1]-sorted[lower])*frac
}
