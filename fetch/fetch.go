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

// Package fetch pulls raw price, valuation, disclosure, and entity series
// from the data portal one calendar-year window at a time. A window that
// fails in transport is skipped and reported; a query rejected by the
// portal or a response missing expected columns aborts the run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/hashicorp/go-multierror"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/panel"
	"github.com/penny-vault/pvpanel/portal"
	"github.com/rs/zerolog"
)

// Fetcher retrieves the raw series behind one or more panel builds. The
// entity table is cached on first use so consecutive builds in the same
// process query it once.
type Fetcher struct {
	Portal    *portal.Client
	StartYear int
	EndYear   int

	assetCache *haxmap.Map[string, *data.Asset]
}

// New creates a Fetcher covering the inclusive [startYear, endYear] window
// range.
func New(client *portal.Client, startYear, endYear int) *Fetcher {
	return &Fetcher{
		Portal:     client,
		StartYear:  startYear,
		EndYear:    endYear,
		assetCache: haxmap.New[string, *data.Asset](),
	}
}

// FetchAll retrieves every raw series and starts the run summary for the
// named dataset. Skipped transport windows are recorded on the summary and
// logged; they do not fail the run.
func (fetcher *Fetcher) FetchAll(ctx context.Context, dataset string) (panel.RawSeries, data.RunSummary, error) {
	summary := data.RunSummary{
		Dataset:   dataset,
		StartTime: time.Now(),
	}

	var raw panel.RawSeries

	prices, skipped, err := fetcher.Prices(ctx)
	if err != nil {
		return raw, summary, err
	}

	summary.SkippedWindows = append(summary.SkippedWindows, skipped...)

	valuations, skipped, err := fetcher.Valuations(ctx)
	if err != nil {
		return raw, summary, err
	}

	summary.SkippedWindows = append(summary.SkippedWindows, skipped...)

	disclosures, skipped, err := fetcher.Disclosures(ctx)
	if err != nil {
		return raw, summary, err
	}

	summary.SkippedWindows = append(summary.SkippedWindows, skipped...)

	assets, err := fetcher.Assets(ctx)
	if err != nil {
		return raw, summary, err
	}

	raw = panel.RawSeries{
		Prices:      prices,
		Valuations:  valuations,
		Disclosures: disclosures,
		Assets:      assets,
	}

	summary.NumObservations = len(prices) + len(valuations) + len(disclosures)

	if len(summary.SkippedWindows) > 0 {
		var windowErrs *multierror.Error
		for _, win := range summary.SkippedWindows {
			windowErrs = multierror.Append(windowErrs, fmt.Errorf("window %s skipped: %w", win, portal.ErrTransport))
		}

		zerolog.Ctx(ctx).Warn().
			Err(windowErrs.ErrorOrNil()).
			Int("NumSkipped", len(summary.SkippedWindows)).
			Msg("some fetch windows were skipped")
	}

	return raw, summary, nil
}

// queryWindows runs buildSQL once per calendar year and hands each result
// set to consume. Transport failures skip the year; any other failure is
// fatal.
func (fetcher *Fetcher) queryWindows(ctx context.Context, table string, buildSQL func(year int) string, consume func(*portal.ResultSet) error) ([]string, error) {
	log := zerolog.Ctx(ctx)

	var skipped []string

	for year := fetcher.StartYear; year <= fetcher.EndYear; year++ {
		log.Info().Str("Table", table).Int("Year", year).Msg("fetching window")

		rs, err := fetcher.Portal.Submit(ctx, buildSQL(year))
		if err != nil {
			if errors.Is(err, portal.ErrTransport) {
				log.Warn().Err(err).Str("Table", table).Int("Year", year).Msg("transport failure; skipping window")
				skipped = append(skipped, fmt.Sprintf("%s:%d", table, year))

				continue
			}

			return skipped, err
		}

		if err := consume(rs); err != nil {
			return skipped, err
		}
	}

	return skipped, nil
}
