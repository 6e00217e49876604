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

// Package panel assembles point-in-time factor panels from raw price,
// valuation, and disclosure series. Construction runs in fixed stages:
// derive disclosure-sequence factors, align everything onto the regular
// period index, derive price factors and lags, then classify size within
// each period. Re-running any stage over the same inputs yields the same
// rows.
package panel

import (
	"context"

	"github.com/penny-vault/pvpanel/data"
	"github.com/rs/zerolog"
)

// RawSeries bundles the fetched inputs to one panel build.
type RawSeries struct {
	Prices      []data.PriceObservation
	Valuations  []data.ValuationObservation
	Disclosures []data.DisclosureRecord
	Assets      map[string]*data.Asset
}

// Build runs the full construction pipeline and returns panel rows ordered
// by ticker then period.
func Build(ctx context.Context, cfg Config, raw RawSeries) []*data.PanelRow {
	subLog := zerolog.Ctx(ctx).With().Str("Frequency", string(cfg.Frequency)).Logger()

	disclosures := DeriveDisclosureFactors(cfg, raw.Disclosures)
	aligned := Align(cfg, raw.Prices, raw.Valuations, disclosures)

	subLog.Info().
		Int("PriceObservations", len(raw.Prices)).
		Int("Disclosures", len(disclosures)).
		Int("AlignedRows", len(aligned)).
		Msg("aligned raw series")

	rows := Derive(cfg, aligned, raw.Assets)
	ClassifySize(cfg, rows)

	return rows
}
