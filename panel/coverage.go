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
	"context"

	"github.com/penny-vault/pvpanel/data"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ColumnCoverage reports how many rows carry a value in one nullable column.
type ColumnCoverage struct {
	Column  string
	NonNull int
	Total   int
}

// Fraction returns the covered share of rows, 0 for an empty panel.
func (c ColumnCoverage) Fraction() float64 {
	if c.Total == 0 {
		return 0
	}

	return float64(c.NonNull) / float64(c.Total)
}

// Coverage tallies non-null counts for every nullable panel column, in
// column order.
func Coverage(rows []*data.PanelRow) []ColumnCoverage {
	cols := []struct {
		name  string
		value func(*data.PanelRow) bool
	}{
		{"return", func(r *data.PanelRow) bool { return r.Return != nil }},
		{"momentum", func(r *data.PanelRow) bool { return r.Momentum != nil }},
		{"lagged_return", func(r *data.PanelRow) bool { return r.LaggedReturn != nil }},
		{"close", func(r *data.PanelRow) bool { return r.Close != nil }},
		{"marketcap", func(r *data.PanelRow) bool { return r.MarketCap != nil }},
		{"pe", func(r *data.PanelRow) bool { return r.PE != nil }},
		{"pb", func(r *data.PanelRow) bool { return r.PB != nil }},
		{"ps", func(r *data.PanelRow) bool { return r.PS != nil }},
		{"asset_growth", func(r *data.PanelRow) bool { return r.AssetGrowth != nil }},
		{"roe", func(r *data.PanelRow) bool { return r.ROE != nil }},
		{"gp_to_assets", func(r *data.PanelRow) bool { return r.GPToAssets != nil }},
		{"gross_margin", func(r *data.PanelRow) bool { return r.GrossMargin != nil }},
		{"asset_turnover", func(r *data.PanelRow) bool { return r.AssetTurnover != nil }},
		{"leverage", func(r *data.PanelRow) bool { return r.Leverage != nil }},
		{"payout_ratio", func(r *data.PanelRow) bool { return r.PayoutRatio != nil }},
		{"size", func(r *data.PanelRow) bool { return r.Size != nil }},
	}

	coverage := make([]ColumnCoverage, len(cols))

	for idx, col := range cols {
		cov := ColumnCoverage{Column: col.name, Total: len(rows)}
		for _, row := range rows {
			if col.value(row) {
				cov.NonNull++
			}
		}

		coverage[idx] = cov
	}

	return coverage
}

// LogCoverage writes one info line per column so build logs show at a
// glance where the panel is thin.
func LogCoverage(ctx context.Context, coverage []ColumnCoverage) {
	log := zerolog.Ctx(ctx)
	printer := message.NewPrinter(language.English)

	for _, cov := range coverage {
		log.Info().
			Str("Column", cov.Column).
			Str("NonNull", printer.Sprintf("%d", cov.NonNull)).
			Str("Coverage", printer.Sprintf("%.1f%%", cov.Fraction()*100)).
			Msg("column coverage")
	}
}
