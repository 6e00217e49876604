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
package output

import (
	"os"

	"github.com/gocarina/gocsv"
	"github.com/penny-vault/pvpanel/data"
	"github.com/rs/zerolog/log"
)

// SaveToCSV writes panel rows to a CSV file with a header row in panel
// column order. Null cells are written empty.
func SaveToCSV(rows []*data.PanelRow, fn string) error {
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&rows, fh); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("CSV write failed")
		return err
	}

	log.Info().Int("NumRows", len(rows)).Str("FileName", fn).Msg("CSV write finished")
	return nil
}
