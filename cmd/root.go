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
	"os"
	"strings"

	"github.com/penny-vault/pvstock/fundamentals"
	"github.com/penny-vault/pvstock/library"
	"github.com/penny-vault/pvstock/pkginfo"
	"github.com/penny-vault/pvstock/prices"
	"github.com/penny-vault/pvstock/provider"
	"github.com/penny-vault/pvstock/updater"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvstock",
	Short: "pvstock tracks price history and fundamentals for a curated list of stocks",
	Long: `pvstock is a command line utility for building and maintaining a local
database of daily stock prices and annual company fundamentals.

Prices are downloaded from Yahoo Finance and kept current with incremental
updates that resume from the last stored day. Fundamentals are read from the
XBRL company facts SEC EDGAR publishes for every filer and normalized across
the US-GAAP and IFRS taxonomies into one record per fiscal year with derived
ratios such as gross margin and EPS.

Tickers can be grouped into categories, charted in the terminal and exported
to CSV.`,
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

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvstock.toml)")
	rootCmd.PersistentFlags().String("db", "", "path of the SQLite database (default is database/stock.db)")
	if err := viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db failed")
	}

	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}
}

func setDefaults() {
	viper.SetDefault("db.path", "database/stock.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("http.timeout", "60s")
	viper.SetDefault("edgar.user_agent", "pvstock admin@example.com")
	viper.SetDefault("edgar.rate_limit", 10)
	viper.SetDefault("yahoo.user_agent", pkginfo.UserAgent())
	viper.SetDefault("update.fundamentals", false)
	viper.SetDefault("add.require_fundamentals", false)
	viper.SetDefault("healthchecks.ping_url", "")
}

// initConfig reads in the config file if one exists and configures logging
func initConfig() {
	setDefaults()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.DefaultContextLogger = &log.Logger

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvstock" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvstock")
	}

	// If a config file is found, read it in.
	configErr := viper.ReadInConfig()

	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("log.level")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if configErr == nil {
		log.Debug().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// openLibrary returns the configured library after making sure its schema is
// current
func openLibrary(ctx context.Context) *library.Library {
	myLibrary := library.New(viper.GetString("db.path"))
	if err := myLibrary.Init(ctx); err != nil {
		log.Fatal().Err(err).Str("DBPath", myLibrary.DBPath).Msg("could not open library")
	}
	return myLibrary
}

// newUpdater wires the price and fundamentals providers to myLibrary
func newUpdater(myLibrary *library.Library) *updater.Updater {
	timeout := viper.GetDuration("http.timeout")

	yahoo := provider.NewYahoo(provider.Config{
		UserAgent: viper.GetString("yahoo.user_agent"),
		Timeout:   timeout,
	})

	edgar := provider.NewEdgar(provider.EdgarConfig{
		Config: provider.Config{
			UserAgent: viper.GetString("edgar.user_agent"),
			Timeout:   timeout,
			RateLimit: viper.GetFloat64("edgar.rate_limit"),
		},
	})

	return updater.New(
		myLibrary,
		prices.NewSyncer(yahoo, myLibrary),
		fundamentals.NewNormalizer(edgar, myLibrary),
	)
}

func updaterOptions() updater.Options {
	return updater.Options{
		Fundamentals:        viper.GetBool("update.fundamentals"),
		RequireFundamentals: viper.GetBool("add.require_fundamentals"),
		HealthcheckURL:      viper.GetString("healthchecks.ping_url"),
	}
}
