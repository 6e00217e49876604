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
package panel_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/panel"
)

// monday zero is 2024-01-01, the first day of ISO week 1 of 2024
var mondayZero = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func monday(week int) time.Time {
	return mondayZero.AddDate(0, 0, 7*week)
}

func weeklyPrices(ticker string, adjCloses ...float64) []data.PriceObservation {
	prices := make([]data.PriceObservation, 0, len(adjCloses))
	for week, adj := range adjCloses {
		prices = append(prices, data.PriceObservation{
			Ticker:   ticker,
			Date:     monday(week),
			Close:    adj,
			AdjClose: adj,
		})
	}

	return prices
}

func fptr(v float64) *float64 {
	return &v
}

var _ = Describe("Panel construction", func() {
	var (
		ctx context.Context
		cfg panel.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = panel.DefaultConfig(panel.Weekly)
	})

	Describe("period returns", func() {
		It("computes the trailing return from adjusted closes", func() {
			raw := panel.RawSeries{Prices: weeklyPrices("AAA", 100, 105, 120)}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows).To(HaveLen(3))
			Expect(rows[0].Return).To(BeNil())
			Expect(rows[1].Return).To(HaveValue(Equal(0.05)))
			Expect(rows[2].Return).To(HaveValue(Equal(0.1429)))
		})

		It("lags the prior return one period", func() {
			raw := panel.RawSeries{Prices: weeklyPrices("AAA", 100, 105, 120)}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[0].LaggedReturn).To(BeNil())
			Expect(rows[1].LaggedReturn).To(BeNil())
			Expect(rows[2].LaggedReturn).To(HaveValue(Equal(0.05)))
		})
	})

	Describe("momentum", func() {
		It("compares the skip-lagged close against the window-earlier close", func() {
			cfg.MomentumWindow = 2
			cfg.MomentumSkip = 1

			raw := panel.RawSeries{Prices: weeklyPrices("AAA", 100, 110, 121, 133.1, 146.41)}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[2].Momentum).To(BeNil())
			Expect(rows[3].Momentum).To(HaveValue(Equal(0.21)))
			Expect(rows[4].Momentum).To(HaveValue(Equal(0.21)))
		})
	})

	Describe("valuation alignment", func() {
		It("enters valuation metrics one period late", func() {
			raw := panel.RawSeries{
				Prices: weeklyPrices("AAA", 100, 101, 102),
				Valuations: []data.ValuationObservation{
					{Ticker: "AAA", Date: monday(0), MarketCap: fptr(10)},
					{Ticker: "AAA", Date: monday(1), MarketCap: fptr(20)},
					{Ticker: "AAA", Date: monday(2), MarketCap: fptr(30)},
				},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[0].MarketCap).To(BeNil())
			Expect(rows[1].MarketCap).To(HaveValue(Equal(10.0)))
			Expect(rows[2].MarketCap).To(HaveValue(Equal(20.0)))
		})

		It("leaves gaps in the valuation series null instead of filling them", func() {
			raw := panel.RawSeries{
				Prices: weeklyPrices("AAA", 100, 101, 102, 103),
				Valuations: []data.ValuationObservation{
					{Ticker: "AAA", Date: monday(0), MarketCap: fptr(10)},
					// no observation in week 2
					{Ticker: "AAA", Date: monday(2), MarketCap: fptr(30)},
				},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[1].MarketCap).To(HaveValue(Equal(10.0)))
			Expect(rows[2].MarketCap).To(BeNil())
			Expect(rows[3].MarketCap).To(HaveValue(Equal(30.0)))
		})
	})

	Describe("disclosure availability", func() {
		It("keeps a disclosure invisible until the period after its filing date", func() {
			raw := panel.RawSeries{
				Prices: weeklyPrices("AAA", 100, 101, 102),
				Disclosures: []data.DisclosureRecord{{
					Ticker:       "AAA",
					ReportPeriod: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
					FilingDate:   monday(1).AddDate(0, 0, 1), // Tuesday of week 2
					ROE:          fptr(0.15),
				}},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[0].ROE).To(BeNil())
			Expect(rows[1].ROE).To(BeNil())
			Expect(rows[2].ROE).To(HaveValue(Equal(0.15)))
		})

		It("carries the latest available disclosure forward until superseded", func() {
			raw := panel.RawSeries{
				Prices: weeklyPrices("AAA", 100, 101, 102, 103, 104, 105),
				Disclosures: []data.DisclosureRecord{
					{
						Ticker:       "AAA",
						ReportPeriod: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
						FilingDate:   monday(0),
						ROE:          fptr(0.1),
					},
					{
						Ticker:       "AAA",
						ReportPeriod: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
						FilingDate:   monday(3),
						ROE:          fptr(0.2),
					},
				},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[0].ROE).To(BeNil())
			Expect(rows[1].ROE).To(HaveValue(Equal(0.1)))
			Expect(rows[2].ROE).To(HaveValue(Equal(0.1)))
			Expect(rows[3].ROE).To(HaveValue(Equal(0.1)))
			Expect(rows[4].ROE).To(HaveValue(Equal(0.2)))
			Expect(rows[5].ROE).To(HaveValue(Equal(0.2)))
		})
	})

	Describe("derived disclosure factors", func() {
		It("nulls leverage when equity is not strictly positive", func() {
			discs := panel.DeriveDisclosureFactors(cfg, []data.DisclosureRecord{
				{Ticker: "AAA", FilingDate: monday(0), Debt: fptr(100), Equity: fptr(0)},
				{Ticker: "BBB", FilingDate: monday(0), Debt: fptr(100), Equity: fptr(50)},
			})

			Expect(discs[0].Leverage).To(BeNil())
			Expect(discs[1].Leverage).To(HaveValue(Equal(2.0)))
		})

		It("nulls payout ratio when eps is not strictly positive", func() {
			discs := panel.DeriveDisclosureFactors(cfg, []data.DisclosureRecord{
				{Ticker: "AAA", FilingDate: monday(0), DPS: fptr(1), EPS: fptr(0)},
				{Ticker: "BBB", FilingDate: monday(0), DPS: fptr(1), EPS: fptr(4)},
			})

			Expect(discs[0].PayoutRatio).To(BeNil())
			Expect(discs[1].PayoutRatio).To(HaveValue(Equal(0.25)))
		})

		It("computes asset growth along the filing sequence", func() {
			discs := panel.DeriveDisclosureFactors(cfg, []data.DisclosureRecord{
				{Ticker: "AAA", FilingDate: monday(0), Assets: fptr(100)},
				{Ticker: "AAA", FilingDate: monday(10), Assets: fptr(150)},
			})

			Expect(discs[0].AssetGrowth).To(BeNil())
			Expect(discs[1].AssetGrowth).To(HaveValue(Equal(0.5)))
		})

		It("nulls asset growth when the prior asset base is not strictly positive", func() {
			discs := panel.DeriveDisclosureFactors(cfg, []data.DisclosureRecord{
				{Ticker: "AAA", FilingDate: monday(0), Assets: fptr(0)},
				{Ticker: "AAA", FilingDate: monday(10), Assets: fptr(150)},
			})

			Expect(discs[1].AssetGrowth).To(BeNil())
		})

		It("nulls gp_to_assets when assets are not strictly positive", func() {
			discs := panel.DeriveDisclosureFactors(cfg, []data.DisclosureRecord{
				{Ticker: "AAA", FilingDate: monday(0), GrossProfit: fptr(10), Assets: fptr(0)},
				{Ticker: "BBB", FilingDate: monday(0), GrossProfit: fptr(10), Assets: fptr(40)},
			})

			Expect(discs[0].GPToAssets).To(BeNil())
			Expect(discs[1].GPToAssets).To(HaveValue(Equal(0.25)))
		})
	})

	Describe("tie breaking", func() {
		It("keeps the later fetched observation when dates collide", func() {
			raw := panel.RawSeries{
				Prices: []data.PriceObservation{
					{Ticker: "AAA", Date: monday(0), Close: 100, AdjClose: 100},
					{Ticker: "AAA", Date: monday(1), Close: 50, AdjClose: 50},
					{Ticker: "AAA", Date: monday(1), Close: 60, AdjClose: 60},
				},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows).To(HaveLen(2))
			Expect(rows[1].Return).To(HaveValue(Equal(-0.4)))
		})
	})

	Describe("idempotence", func() {
		It("produces identical rows when re-run over the same inputs", func() {
			raw := panel.RawSeries{
				Prices: append(weeklyPrices("AAA", 100, 105, 120), weeklyPrices("BBB", 50, 55, 60)...),
				Valuations: []data.ValuationObservation{
					{Ticker: "AAA", Date: monday(0), MarketCap: fptr(10), PE: fptr(15)},
					{Ticker: "BBB", Date: monday(1), MarketCap: fptr(99)},
				},
				Disclosures: []data.DisclosureRecord{
					{Ticker: "AAA", FilingDate: monday(0), Assets: fptr(100), Equity: fptr(40), Debt: fptr(20)},
				},
				Assets: map[string]*data.Asset{
					"AAA": {Ticker: "AAA", Sector: "Technology", Industry: "Software"},
				},
			}

			first := panel.Build(ctx, cfg, raw)
			second := panel.Build(ctx, cfg, raw)

			Expect(second).To(Equal(first))
		})
	})

	Describe("entity metadata", func() {
		It("stamps sector and industry onto every row", func() {
			raw := panel.RawSeries{
				Prices: weeklyPrices("AAA", 100, 105),
				Assets: map[string]*data.Asset{
					"AAA": {Ticker: "AAA", Sector: "Energy", Industry: "Oil & Gas"},
				},
			}
			rows := panel.Build(ctx, cfg, raw)

			Expect(rows[0].Sector).To(Equal("Energy"))
			Expect(rows[1].Industry).To(Equal("Oil & Gas"))
		})
	})
})

var _ = Describe("Size classification", func() {
	newRow := func(ticker, period string, cap *float64) *data.PanelRow {
		return &data.PanelRow{Ticker: ticker, Period: period, MarketCap: cap}
	}

	It("ranks a period's cross-section from Nano-Cap to Mega-Cap", func() {
		cfg := panel.DefaultConfig(panel.Weekly)
		rows := []*data.PanelRow{
			newRow("AAA", "2024-01", fptr(1)),
			newRow("BBB", "2024-01", fptr(2)),
			newRow("CCC", "2024-01", fptr(3)),
			newRow("DDD", "2024-01", fptr(4)),
			newRow("EEE", "2024-01", fptr(100)),
		}

		panel.ClassifySize(cfg, rows)

		Expect(rows[0].Size).To(HaveValue(Equal("Nano-Cap")))
		Expect(rows[4].Size).To(HaveValue(Equal("Mega-Cap")))
	})

	It("is deterministic across repeated classification", func() {
		cfg := panel.DefaultConfig(panel.Weekly)

		build := func() []*data.PanelRow {
			rows := []*data.PanelRow{
				newRow("AAA", "2024-01", fptr(1)),
				newRow("BBB", "2024-01", fptr(2)),
				newRow("CCC", "2024-01", fptr(3)),
				newRow("DDD", "2024-01", fptr(4)),
				newRow("EEE", "2024-01", fptr(100)),
			}
			panel.ClassifySize(cfg, rows)
			return rows
		}

		Expect(build()).To(Equal(build()))
	})

	It("leaves rows with a null market cap unclassified", func() {
		cfg := panel.DefaultConfig(panel.Weekly)
		rows := []*data.PanelRow{
			newRow("AAA", "2024-01", fptr(1)),
			newRow("BBB", "2024-01", nil),
		}

		panel.ClassifySize(cfg, rows)

		Expect(rows[1].Size).To(BeNil())
	})

	It("classifies each period independently", func() {
		cfg := panel.DefaultConfig(panel.Weekly)
		rows := []*data.PanelRow{
			newRow("AAA", "2024-01", fptr(1)),
			newRow("BBB", "2024-01", fptr(100)),
			// same caps, later period
			newRow("AAA", "2024-02", fptr(1)),
			newRow("BBB", "2024-02", fptr(100)),
		}

		panel.ClassifySize(cfg, rows)

		Expect(rows[0].Size).To(Equal(rows[2].Size))
		Expect(rows[1].Size).To(Equal(rows[3].Size))
	})
})

var _ = Describe("Coverage", func() {
	It("tallies non-null cells per column", func() {
		rows := []*data.PanelRow{
			{Ticker: "AAA", Period: "2024-01", Return: fptr(0.1)},
			{Ticker: "BBB", Period: "2024-01"},
		}

		coverage := panel.Coverage(rows)

		Expect(coverage[0].Column).To(Equal("return"))
		Expect(coverage[0].NonNull).To(Equal(1))
		Expect(coverage[0].Total).To(Equal(2))
		Expect(coverage[0].Fraction()).To(Equal(0.5))
	})
})
