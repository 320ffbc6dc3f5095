// Copyright 2025
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

	"github.com/charmbracelet/lipgloss"
	"github.com/penny-vault/pvstock/fundamentals"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <ticker>...",
	Short: "Register tickers and download their history",
	Long: `The add sub-command registers each ticker by downloading its fundamentals
from SEC EDGAR and its full daily price history from Yahoo Finance. A ticker is
only registered when price data is available. Missing fundamentals are reported
but do not block registration unless --require-fundamentals is set.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		myLibrary := openLibrary(ctx)
		myUpdater := newUpdater(myLibrary)
		opts := updaterOptions()

		failed := 0
		for _, ticker := range args {
			result, err := myUpdater.AddTicker(ctx, ticker, opts)
			if err != nil {
				failed++
				log.Error().Err(err).Str("Ticker", ticker).Msg("could not add ticker")
				fmt.Println(errStyle.Render(fmt.Sprintf("✗ %s: %s", ticker, err)))
				continue
			}

			fund := result.Fundamentals
			switch fund.Status {
			case fundamentals.StatusComplete, fundamentals.StatusPartial:
				fmt.Println(okStyle.Render(fmt.Sprintf("✓ %s added with %d fiscal years of fundamentals (%s)",
					result.Ticker, len(fund.Records), fund.Taxonomy)))
			default:
				fmt.Println(warnStyle.Render(fmt.Sprintf("✓ %s added, fundamentals unavailable: %v", result.Ticker, fund.Err)))
			}
		}

		if failed > 0 {
			log.Fatal().Int("NumFailed", failed).Msg("some tickers could not be added")
		}
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().Bool("require-fundamentals", false, "fail when fundamentals cannot be loaded")
	if err := viper.BindPFlag("add.require_fundamentals", addCmd.Flags().Lookup("require-fundamentals")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for require-fundamentals failed")
	}
}
