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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvpanel",
	Short: "pvpanel builds point-in-time factor panels from a SQL data portal",
	Long: `pvpanel is a command line utility that fetches equity price, valuation,
and fundamental disclosure data from a SQL-over-HTTP data portal and assembles
it into regular (ticker, period) factor panels suitable for backtesting.

Panels are built without look-ahead: every feature on a row is computed only
from information that was publicly available before the row's period began.
Valuation data is lagged one period and fundamental data only enters the panel
after its filing date, carried forward until superseded.

Finished panels are written as parquet and csv artifacts, stored in a
PostgreSQL database, and optionally uploaded to Backblaze b2.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvpanel.toml)")

	rootCmd.PersistentFlags().String("portal-endpoint", "", "query URL of the data portal")
	if err := viper.BindPFlag("portal.endpoint", rootCmd.PersistentFlags().Lookup("portal-endpoint")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for portal.endpoint failed")
	}

	rootCmd.PersistentFlags().String("portal-token", "", "bearer token for the data portal")
	if err := viper.BindPFlag("portal.token", rootCmd.PersistentFlags().Lookup("portal-token")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for portal.token failed")
	}

	rootCmd.PersistentFlags().Int("portal-rate-limit", 300, "maximum portal queries per minute")
	if err := viper.BindPFlag("portal.rate_limit", rootCmd.PersistentFlags().Lookup("portal-rate-limit")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for portal.rate_limit failed")
	}

	rootCmd.PersistentFlags().Duration("portal-request-timeout", 0, "per-request timeout for portal queries")
	if err := viper.BindPFlag("portal.request_timeout", rootCmd.PersistentFlags().Lookup("portal-request-timeout")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for portal.request_timeout failed")
	}

	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvpanel" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvpanel")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
