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

// Package output writes finished panels to local artifact files.
package output

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/penny-vault/pvpanel/data"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// ArtifactName returns the standard file name for a dataset artifact:
// slugged dataset plus the build date, e.g. weekly-panel-20240315.parquet.
func ArtifactName(dataset string, dateStr string, extension string) string {
	return fmt.Sprintf("%s-%s.%s", slug.Make(dataset), dateStr, extension)
}

// SaveToParquet writes panel rows to a parquet file with one column per
// panel column, nullable columns optional.
func SaveToParquet(rows []*data.PanelRow, fn string) error {
	var err error

	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(data.PanelRow), 4)
	if err != nil {
		log.Error().
			Str("OriginalError", err.Error()).
			Msg("Parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, row := range rows {
		if err = pw.Write(row); err != nil {
			log.Error().
				Str("OriginalError", err.Error()).
				Str("Ticker", row.Ticker).Str("Period", row.Period).
				Msg("Parquet write failed for row")
		}
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("Parquet write failed")
		return err
	}

	log.Info().Int("NumRows", len(rows)).Str("FileName", fn).Msg("Parquet write finished")
	return nil
}
