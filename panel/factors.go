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
	"math"
	"sort"

	"github.com/penny-vault/pvpanel/data"
)

// Config controls panel construction for one dataset frequency.
type Config struct {
	Frequency Frequency

	// Momentum computes adj[t-skip] / adj[t-skip-window] - 1 over the
	// ticker's observed period sequence.
	MomentumWindow int
	MomentumSkip   int

	// GrowthPeriods is the number of disclosure steps asset growth
	// looks back over.
	GrowthPeriods int

	// SizeCutoffs are the ascending market-cap percentile boundaries
	// separating the six size tiers within each period.
	SizeCutoffs []float64
}

// DefaultConfig returns the standard parameters for a frequency: weekly
// momentum looks back 48 periods skipping the 5 most recent, monthly looks
// back 12 skipping 2.
func DefaultConfig(freq Frequency) Config {
	cfg := Config{
		Frequency:     freq,
		GrowthPeriods: 1,
		SizeCutoffs:   []float64{3.34, 18.83, 51.46, 78.60, 98.53},
	}

	switch freq {
	case Monthly:
		cfg.MomentumWindow = 12
		cfg.MomentumSkip = 2
	default:
		cfg.MomentumWindow = 48
		cfg.MomentumSkip = 5
	}

	return cfg
}

// DeriveDisclosureFactors computes the derived fundamental items for each
// disclosure record along the ticker's filing sequence. It runs before
// temporal alignment so the derived values propagate with the record when
// it is carried forward.
func DeriveDisclosureFactors(cfg Config, disclosures []data.DisclosureRecord) []data.DisclosureRecord {
	byTicker := make(map[string][]data.DisclosureRecord)
	tickers := make([]string, 0, len(disclosures))

	for _, rec := range disclosures {
		if _, ok := byTicker[rec.Ticker]; !ok {
			tickers = append(tickers, rec.Ticker)
		}

		byTicker[rec.Ticker] = append(byTicker[rec.Ticker], rec)
	}

	sort.Strings(tickers)

	growthPeriods := cfg.GrowthPeriods
	if growthPeriods <= 0 {
		growthPeriods = 1
	}

	out := make([]data.DisclosureRecord, 0, len(disclosures))

	for _, ticker := range tickers {
		recs := byTicker[ticker]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].FilingDate.Before(recs[j].FilingDate)
		})

		for idx := range recs {
			rec := recs[idx]

			if idx >= growthPeriods {
				prior := recs[idx-growthPeriods].Assets
				if rec.Assets != nil && prior != nil && *prior > 0 {
					rec.AssetGrowth = round4Ptr((*rec.Assets - *prior) / *prior)
				}
			}

			rec.GPToAssets = positiveRatio(rec.GrossProfit, rec.Assets)
			rec.Leverage = positiveRatio(rec.Debt, rec.Equity)
			rec.PayoutRatio = positiveRatio(rec.DPS, rec.EPS)

			out = append(out, rec)
		}
	}

	return out
}

// Derive turns aligned rows into finished panel rows: period returns,
// momentum, the one-period lags that keep valuation data out of its own
// period, and the fundamental factors carried on the attached disclosure.
// Rows must be ordered by ticker then period, as Align produces them.
func Derive(cfg Config, rows []*AlignedRow, assets map[string]*data.Asset) []*data.PanelRow {
	out := make([]*data.PanelRow, 0, len(rows))

	start := 0
	for start < len(rows) {
		end := start
		for end < len(rows) && rows[end].Ticker == rows[start].Ticker {
			end++
		}

		deriveTicker(cfg, rows[start:end], assets, &out)
		start = end
	}

	return out
}

func deriveTicker(cfg Config, seq []*AlignedRow, assets map[string]*data.Asset, out *[]*data.PanelRow) {
	var prevReturn *float64

	for idx, aligned := range seq {
		row := &data.PanelRow{
			Ticker: aligned.Ticker,
			Period: aligned.Period.String(),
		}

		if asset, ok := assets[aligned.Ticker]; ok {
			row.Sector = asset.Sector
			row.Industry = asset.Industry
		}

		if idx > 0 {
			prior := seq[idx-1]
			if prior.AdjClose > 0 {
				row.Return = round4Ptr(aligned.AdjClose/prior.AdjClose - 1)
			}

			// valuation fields enter the panel lagged one period
			row.Close = round4Ptr(prior.Close)
			row.MarketCap = roundOpt(prior.MarketCap)
			row.PE = roundOpt(prior.PE)
			row.PB = roundOpt(prior.PB)
			row.PS = roundOpt(prior.PS)
		}

		row.LaggedReturn = prevReturn
		prevReturn = row.Return

		if back := idx - cfg.MomentumSkip; back-cfg.MomentumWindow >= 0 {
			recent := seq[back].AdjClose
			base := seq[back-cfg.MomentumWindow].AdjClose
			if base > 0 {
				row.Momentum = round4Ptr(recent/base - 1)
			}
		}

		if fund := aligned.Fund; fund != nil {
			row.AssetGrowth = fund.AssetGrowth
			row.ROE = roundOpt(fund.ROE)
			row.GPToAssets = fund.GPToAssets
			row.GrossMargin = roundOpt(fund.GrossMargin)
			row.AssetTurnover = roundOpt(fund.AssetTurnover)
			row.Leverage = fund.Leverage
			row.PayoutRatio = fund.PayoutRatio
		}

		*out = append(*out, row)
	}
}

// positiveRatio divides num by den, returning nil when either side is
// missing or the denominator is not strictly positive.
func positiveRatio(num, den *float64) *float64 {
	if num == nil || den == nil || *den <= 0 {
		return nil
	}

	return round4Ptr(*num / *den)
}

func round4Ptr(v float64) *float64 {
	rounded := math.Round(v*1e4) / 1e4
	return &rounded
}

func roundOpt(v *float64) *float64 {
	if v == nil {
		return nil
	}

	return round4Ptr(*v)
}
