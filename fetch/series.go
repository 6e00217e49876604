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
package fetch

import (
	"context"
	"fmt"

	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/portal"
	"github.com/rs/zerolog"
)

// portal table names
const (
	priceTable      = "sep"
	valuationTable  = "daily"
	disclosureTable = "sf1"
	entityTable     = "tickers"
)

// Prices fetches the daily price series year by year. Rows without a
// parseable date are dropped.
func (fetcher *Fetcher) Prices(ctx context.Context) ([]data.PriceObservation, []string, error) {
	var prices []data.PriceObservation

	buildSQL := func(year int) string {
		return fmt.Sprintf("SELECT ticker, date, close, closeadj FROM %s WHERE date >= '%d-01-01' AND date <= '%d-12-31'", priceTable, year, year)
	}

	skipped, err := fetcher.queryWindows(ctx, priceTable, buildSQL, func(rs *portal.ResultSet) error {
		if err := rs.Require("ticker", "date", "close", "closeadj"); err != nil {
			return err
		}

		for _, row := range rs.Rows {
			date, err := rs.Date(row, "date")
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("Table", priceTable).Msg("dropping row with unparseable date")
				continue
			}

			prices = append(prices, data.PriceObservation{
				Ticker:   rs.Value(row, "ticker").String(),
				Date:     date,
				Close:    rs.Value(row, "close").Float(),
				AdjClose: rs.Value(row, "closeadj").Float(),
			})
		}

		return nil
	})

	return prices, skipped, err
}

// Valuations fetches the daily valuation series year by year. Individual
// metrics may be null; they stay null through the whole pipeline.
func (fetcher *Fetcher) Valuations(ctx context.Context) ([]data.ValuationObservation, []string, error) {
	var valuations []data.ValuationObservation

	buildSQL := func(year int) string {
		return fmt.Sprintf("SELECT ticker, date, marketcap, pe, pb, ps FROM %s WHERE date >= '%d-01-01' AND date <= '%d-12-31'", valuationTable, year, year)
	}

	skipped, err := fetcher.queryWindows(ctx, valuationTable, buildSQL, func(rs *portal.ResultSet) error {
		if err := rs.Require("ticker", "date", "marketcap", "pe", "pb", "ps"); err != nil {
			return err
		}

		for _, row := range rs.Rows {
			date, err := rs.Date(row, "date")
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("Table", valuationTable).Msg("dropping row with unparseable date")
				continue
			}

			valuations = append(valuations, data.ValuationObservation{
				Ticker:    rs.Value(row, "ticker").String(),
				Date:      date,
				MarketCap: rs.Float(row, "marketcap"),
				PE:        rs.Float(row, "pe"),
				PB:        rs.Float(row, "pb"),
				PS:        rs.Float(row, "ps"),
			})
		}

		return nil
	})

	return valuations, skipped, err
}

// Disclosures fetches annual report fundamentals year by year, windowed on
// the filing date so late filings land in the window they became public.
func (fetcher *Fetcher) Disclosures(ctx context.Context) ([]data.DisclosureRecord, []string, error) {
	var disclosures []data.DisclosureRecord

	buildSQL := func(year int) string {
		return fmt.Sprintf("SELECT ticker, datekey, reportperiod, assets, equity, debt, gp, revenue, roe, grossmargin, assetturnover, eps, dps FROM %s WHERE dimension = 'ARY' AND datekey >= '%d-01-01' AND datekey <= '%d-12-31'", disclosureTable, year, year)
	}

	skipped, err := fetcher.queryWindows(ctx, disclosureTable, buildSQL, func(rs *portal.ResultSet) error {
		if err := rs.Require("ticker", "datekey", "reportperiod", "assets", "equity", "debt", "gp", "revenue", "roe", "grossmargin", "assetturnover", "eps", "dps"); err != nil {
			return err
		}

		for _, row := range rs.Rows {
			filingDate, err := rs.Date(row, "datekey")
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("Table", disclosureTable).Msg("dropping row with unparseable filing date")
				continue
			}

			reportPeriod, err := rs.Date(row, "reportperiod")
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("Table", disclosureTable).Msg("dropping row with unparseable report period")
				continue
			}

			disclosures = append(disclosures, data.DisclosureRecord{
				Ticker:        rs.Value(row, "ticker").String(),
				ReportPeriod:  reportPeriod,
				FilingDate:    filingDate,
				Assets:        rs.Float(row, "assets"),
				Equity:        rs.Float(row, "equity"),
				Debt:          rs.Float(row, "debt"),
				GrossProfit:   rs.Float(row, "gp"),
				Revenue:       rs.Float(row, "revenue"),
				ROE:           rs.Float(row, "roe"),
				GrossMargin:   rs.Float(row, "grossmargin"),
				AssetTurnover: rs.Float(row, "assetturnover"),
				EPS:           rs.Float(row, "eps"),
				DPS:           rs.Float(row, "dps"),
			})
		}

		return nil
	})

	return disclosures, skipped, err
}

// Assets fetches the entity reference table. Results are cached for the
// life of the process; a second dataset build reuses the first fetch.
func (fetcher *Fetcher) Assets(ctx context.Context) (map[string]*data.Asset, error) {
	if fetcher.assetCache.Len() > 0 {
		return fetcher.cachedAssets(), nil
	}

	zerolog.Ctx(ctx).Info().Str("Table", entityTable).Msg("fetching entity metadata")

	sql := fmt.Sprintf("SELECT ticker, name, sector, industry, isdelisted FROM %s", entityTable)

	rs, err := fetcher.Portal.Submit(ctx, sql)
	if err != nil {
		return nil, err
	}

	if err := rs.Require("ticker", "name", "sector", "industry", "isdelisted"); err != nil {
		return nil, err
	}

	for _, row := range rs.Rows {
		asset := &data.Asset{
			Ticker:   rs.Value(row, "ticker").String(),
			Name:     rs.Value(row, "name").String(),
			Sector:   rs.Value(row, "sector").String(),
			Industry: rs.Value(row, "industry").String(),
			Delisted: rs.Value(row, "isdelisted").String() == "Y",
		}

		fetcher.assetCache.Set(asset.Ticker, asset)
	}

	return fetcher.cachedAssets(), nil
}

func (fetcher *Fetcher) cachedAssets() map[string]*data.Asset {
	assets := make(map[string]*data.Asset, int(fetcher.assetCache.Len()))

	fetcher.assetCache.ForEach(func(ticker string, asset *data.Asset) bool {
		assets[ticker] = asset
		return true
	})

	return assets
}
