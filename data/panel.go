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
package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PanelRow is one (ticker, period) output row. The column order here is the
// documented artifact column order; writers must preserve it. Pointer fields
// are nullable: nil propagates data sparsity, it is never an error.
//
// Every feature column on a row is knowable strictly before the row's return:
// Close, MarketCap, PE, PB and PS are the prior period's values, and the
// fundamental columns come from the most recently *available* disclosure
// (first period boundary after its filing date), carried forward.
type PanelRow struct {
	Ticker string `json:"ticker" csv:"ticker" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Period string `json:"period" csv:"period" parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`

	Return       *float64 `json:"return" csv:"return" parquet:"name=return, type=DOUBLE, repetitiontype=OPTIONAL"`
	Momentum     *float64 `json:"momentum" csv:"momentum" parquet:"name=momentum, type=DOUBLE, repetitiontype=OPTIONAL"`
	LaggedReturn *float64 `json:"lagged_return" csv:"lagged_return" parquet:"name=lagged_return, type=DOUBLE, repetitiontype=OPTIONAL"`

	Close     *float64 `json:"close" csv:"close" parquet:"name=close, type=DOUBLE, repetitiontype=OPTIONAL"`
	MarketCap *float64 `json:"marketcap" csv:"marketcap" parquet:"name=marketcap, type=DOUBLE, repetitiontype=OPTIONAL"`
	PE        *float64 `json:"pe" csv:"pe" parquet:"name=pe, type=DOUBLE, repetitiontype=OPTIONAL"`
	PB        *float64 `json:"pb" csv:"pb" parquet:"name=pb, type=DOUBLE, repetitiontype=OPTIONAL"`
	PS        *float64 `json:"ps" csv:"ps" parquet:"name=ps, type=DOUBLE, repetitiontype=OPTIONAL"`

	AssetGrowth   *float64 `json:"asset_growth" csv:"asset_growth" parquet:"name=asset_growth, type=DOUBLE, repetitiontype=OPTIONAL"`
	ROE           *float64 `json:"roe" csv:"roe" parquet:"name=roe, type=DOUBLE, repetitiontype=OPTIONAL"`
	GPToAssets    *float64 `json:"gp_to_assets" csv:"gp_to_assets" parquet:"name=gp_to_assets, type=DOUBLE, repetitiontype=OPTIONAL"`
	GrossMargin   *float64 `json:"grossmargin" csv:"grossmargin" parquet:"name=grossmargin, type=DOUBLE, repetitiontype=OPTIONAL"`
	AssetTurnover *float64 `json:"assetturnover" csv:"assetturnover" parquet:"name=assetturnover, type=DOUBLE, repetitiontype=OPTIONAL"`
	Leverage      *float64 `json:"leverage" csv:"leverage" parquet:"name=leverage, type=DOUBLE, repetitiontype=OPTIONAL"`
	PayoutRatio   *float64 `json:"payout_ratio" csv:"payout_ratio" parquet:"name=payout_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`

	Sector   string  `json:"sector" csv:"sector" parquet:"name=sector, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Industry string  `json:"industry" csv:"industry" parquet:"name=industry, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Size     *string `json:"size" csv:"size" parquet:"name=size, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

func (row *PanelRow) SaveDB(ctx context.Context, dataset string, tbl string, dbConn *pgxpool.Conn) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Msg("error committing panel row transaction to database")
		}
	}()

	sql := fmt.Sprintf(`INSERT INTO %[1]s (
		"dataset",
		"ticker",
		"period",
		"return",
		"momentum",
		"lagged_return",
		"close",
		"marketcap",
		"pe",
		"pb",
		"ps",
		"asset_growth",
		"roe",
		"gp_to_assets",
		"grossmargin",
		"assetturnover",
		"leverage",
		"payout_ratio",
		"sector",
		"industry",
		"size"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21
	) ON CONFLICT ON CONSTRAINT %[1]s_pkey DO UPDATE SET
		"return" = EXCLUDED.return,
		momentum = EXCLUDED.momentum,
		lagged_return = EXCLUDED.lagged_return,
		"close" = EXCLUDED.close,
		marketcap = EXCLUDED.marketcap,
		pe = EXCLUDED.pe,
		pb = EXCLUDED.pb,
		ps = EXCLUDED.ps,
		asset_growth = EXCLUDED.asset_growth,
		roe = EXCLUDED.roe,
		gp_to_assets = EXCLUDED.gp_to_assets,
		grossmargin = EXCLUDED.grossmargin,
		assetturnover = EXCLUDED.assetturnover,
		leverage = EXCLUDED.leverage,
		payout_ratio = EXCLUDED.payout_ratio,
		sector = EXCLUDED.sector,
		industry = EXCLUDED.industry,
		size = EXCLUDED.size;`, tbl)

	_, err = tx.Exec(ctx, sql, dataset, row.Ticker, row.Period, row.Return,
		row.Momentum, row.LaggedReturn, row.Close, row.MarketCap, row.PE,
		row.PB, row.PS, row.AssetGrowth, row.ROE, row.GPToAssets,
		row.GrossMargin, row.AssetTurnover, row.Leverage, row.PayoutRatio,
		row.Sector, row.Industry, row.Size)
	if err != nil {
		log.Error().Err(err).Str("SQL", sql).Msg("error saving panel row to database")
	}

	return nil
}
