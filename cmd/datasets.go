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
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/penny-vault/pvpanel/data"
	"github.com/penny-vault/pvpanel/panel"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// datasetsCmd represents the datasets command
var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the panel datasets this tool can build",
	Run: func(cmd *cobra.Command, args []string) {
		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		builder := strings.Builder{}
		builder.WriteString("# Available Datasets\n")

		for _, dataset := range []string{data.WeeklyPanelKey, data.MonthlyPanelKey} {
			cfg := panel.DefaultConfig(frequencyFor(dataset))

			builder.WriteString(fmt.Sprintf("\n## %s\n", dataset))
			builder.WriteString(fmt.Sprintf("One row per (ticker, %s period) with trailing return, momentum "+
				"(%d periods back, skipping the %d most recent), lagged valuation metrics, "+
				"forward-filled fundamental factors, and a per-period size classification.\n",
				cfg.Frequency, cfg.MomentumWindow, cfg.MomentumSkip))
		}

		out, err := r.Render(builder.String())
		if err != nil {
			log.Fatal().Err(err).Msg("could not render dataset document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
