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
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvpanel/healthcheck"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var healthcheckSchedule string

// healthchecksCmd represents the healthchecks command
var healthchecksCmd = &cobra.Command{
	Use:   "healthchecks",
	Short: "Manage healthchecks.io checks for scheduled builds",
}

var healthchecksCreateCmd = &cobra.Command{
	Use:   "create <dataset>",
	Short: "Create a check for a dataset build schedule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dataset := args[0]

		checkID, err := healthcheck.Create(dataset, slug.Make(dataset), healthcheckSchedule)
		if err != nil {
			log.Fatal().Err(err).Str("Dataset", dataset).Msg("could not create health check")
		}

		log.Info().Str("Dataset", dataset).Str("CheckID", checkID).
			Msgf("health check created; set healthchecks.checks.%s = %q in your config", dataset, checkID)
	},
}

var healthchecksPauseCmd = &cobra.Command{
	Use:   "pause <check-id>",
	Short: "Pause monitoring of a check",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := healthcheck.Pause(args[0]); err != nil {
			log.Fatal().Err(err).Str("CheckID", args[0]).Msg("could not pause health check")
		}
	},
}

var healthchecksResumeCmd = &cobra.Command{
	Use:   "resume <check-id>",
	Short: "Resume monitoring of a check",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := healthcheck.Resume(args[0]); err != nil {
			log.Fatal().Err(err).Str("CheckID", args[0]).Msg("could not resume health check")
		}
	},
}

var healthchecksDeleteCmd = &cobra.Command{
	Use:   "delete <check-id>",
	Short: "Delete a check",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := healthcheck.Delete(args[0]); err != nil {
			log.Fatal().Err(err).Str("CheckID", args[0]).Msg("could not delete health check")
		}
	},
}

func init() {
	rootCmd.AddCommand(healthchecksCmd)
	healthchecksCmd.AddCommand(healthchecksCreateCmd)
	healthchecksCmd.AddCommand(healthchecksPauseCmd)
	healthchecksCmd.AddCommand(healthchecksResumeCmd)
	healthchecksCmd.AddCommand(healthchecksDeleteCmd)

	healthchecksCreateCmd.Flags().StringVar(&healthcheckSchedule, "schedule", "0 6 * * 6", "cron schedule for the check")
}
