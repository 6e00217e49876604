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
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvpanel/backblaze"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/fetch"
	"github.com/penny-vault/pvpanel/healthcheck"
	"github.com/penny-vault/pvpanel/output"
	"github.com/penny-vault/pvpanel/panel"
	"github.com/penny-vault/pvpanel/portal"
	"github.com/penny-vault/pvpanel/store"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildStartYear      int
	buildEndYear        int
	buildOutputDir      string
	buildMomentumWindow int
	buildMomentumSkip   int
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [dataset...]",
	Short: "Fetch raw series and build factor panels",
	Long: `The build sub-command fetches price, valuation, and disclosure data from
the configured portal and assembles one factor panel per requested dataset.
With no arguments both the weekly and monthly panels are built. Finished
panels are written as parquet and csv artifacts; when a database is
configured they are also upserted there and recorded in build history.`,
	ValidArgs: []string{data.WeeklyPanelKey, data.MonthlyPanelKey},
	Args:      cobra.OnlyValidArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		datasets := args
		if len(datasets) == 0 {
			datasets = []string{data.WeeklyPanelKey, data.MonthlyPanelKey}
		}

		endYear := buildEndYear
		if endYear == 0 {
			endYear = time.Now().Year()
		}

		portalClient := portal.New(portal.Config{
			Endpoint:       viper.GetString("portal.endpoint"),
			Token:          viper.GetString("portal.token"),
			RequestTimeout: viper.GetDuration("portal.request_timeout"),
			RateLimit:      viper.GetInt("portal.rate_limit"),
		})

		fetcher := fetch.New(portalClient, buildStartYear, endYear)

		var myStore *store.Store
		if dbURL := viper.GetString("db.url"); dbURL != "" {
			var err error
			if myStore, err = store.New(ctx, dbURL); err != nil {
				log.Fatal().Err(err).Msg("could not connect to panel store")
			}
			defer myStore.Close()
		}

		for _, dataset := range datasets {
			buildDataset(ctx, fetcher, myStore, dataset)
		}
	},
}

func buildDataset(ctx context.Context, fetcher *fetch.Fetcher, myStore *store.Store, dataset string) {
	startTime := time.Now()
	buildLog := log.With().Str("Dataset", dataset).Logger()

	cfg := panel.DefaultConfig(frequencyFor(dataset))
	if buildMomentumWindow > 0 {
		cfg.MomentumWindow = buildMomentumWindow
	}
	if buildMomentumSkip > 0 {
		cfg.MomentumSkip = buildMomentumSkip
	}

	raw, summary, err := fetcher.FetchAll(ctx, dataset)
	if err != nil {
		buildLog.Fatal().Err(err).Msg("fetch returned an error")
	}

	rows := panel.Build(ctx, cfg, raw)
	panel.LogCoverage(ctx, panel.Coverage(rows))

	summary.RunID = uuid.New()
	summary.EndTime = time.Now()
	summary.NumRows = len(rows)
	summary.NumEntities = countEntities(rows)

	dateStr := time.Now().Format("20060102")

	parquetFn := filepath.Join(buildOutputDir, output.ArtifactName(dataset, dateStr, "parquet"))
	if err := output.SaveToParquet(rows, parquetFn); err != nil {
		buildLog.Fatal().Err(err).Msg("failed writing parquet artifact")
	}

	csvFn := filepath.Join(buildOutputDir, output.ArtifactName(dataset, dateStr, "csv"))
	if err := output.SaveToCSV(rows, csvFn); err != nil {
		buildLog.Fatal().Err(err).Msg("failed writing csv artifact")
	}

	if myStore != nil {
		if err := myStore.SavePanel(ctx, dataset, rows); err != nil {
			buildLog.Fatal().Err(err).Msg("failed saving panel to database")
		}

		if err := myStore.RecordBuild(ctx, summary); err != nil {
			buildLog.Error().Err(err).Msg("failed recording build history")
		}
	}

	if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
		if err := backblaze.Upload(parquetFn, bucket, dataset); err != nil {
			buildLog.Error().Err(err).Msg("failed uploading parquet artifact to Backblaze")
		}

		if err := backblaze.Upload(csvFn, bucket, dataset); err != nil {
			buildLog.Error().Err(err).Msg("failed uploading csv artifact to Backblaze")
		}
	}

	if checkID := viper.GetString(fmt.Sprintf("healthchecks.checks.%s", dataset)); checkID != "" {
		if err := healthcheck.Ping(checkID); err != nil {
			buildLog.Error().Err(err).Msg("failed pinging health check")
		}
	}

	runTime := time.Since(startTime)
	buildLog.Info().
		Str("RunTime", durafmt.Parse(runTime).String()).
		Int("NumRows", summary.NumRows).
		Int("NumEntities", summary.NumEntities).
		Int("NumSkippedWindows", len(summary.SkippedWindows)).
		Msg("dataset build complete")
}

func frequencyFor(dataset string) panel.Frequency {
	if dataset == data.MonthlyPanelKey {
		return panel.Monthly
	}

	return panel.Weekly
}

func countEntities(rows []*data.PanelRow) int {
	tickers := make(map[string]struct{})
	for _, row := range rows {
		tickers[row.Ticker] = struct{}{}
	}

	return len(tickers)
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().IntVar(&buildStartYear, "start-year", 1998, "first calendar year to fetch")
	buildCmd.Flags().IntVar(&buildEndYear, "end-year", 0, "last calendar year to fetch (default current year)")
	buildCmd.Flags().StringVar(&buildOutputDir, "output-dir", ".", "directory for panel artifacts")
	buildCmd.Flags().IntVar(&buildMomentumWindow, "momentum-window", 0, "override the momentum lookback window")
	buildCmd.Flags().IntVar(&buildMomentumSkip, "momentum-skip", 0, "override the momentum skip periods")
}
