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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var listCategory string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tickers in the library",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		myLibrary := openLibrary(ctx)

		coverage, err := myLibrary.Coverage(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list tickers")
		}

		var members map[string]bool
		if listCategory != "" {
			tickers, err := myLibrary.CategoryTickers(ctx, listCategory)
			if err != nil {
				log.Fatal().Err(err).Str("Category", listCategory).Msg("could not list category")
			}

			members = make(map[string]bool, len(tickers))
			for _, ticker := range tickers {
				members[ticker] = true
			}
		}

		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			Headers("TICKER", "FIRST", "LAST", "BARS", "YEARS", "CATEGORIES")

		for _, item := range coverage {
			if members != nil && !members[item.Ticker] {
				continue
			}

			categories, err := myLibrary.TickerCategories(ctx, item.Ticker)
			if err != nil {
				log.Fatal().Err(err).Str("Ticker", item.Ticker).Msg("could not load categories")
			}

			names := make([]string, len(categories))
			for idx, category := range categories {
				names[idx] = category.Name
			}

			tbl.Row(item.Ticker, item.FirstDate, item.LastDate, fmt.Sprint(item.NumBars),
				fmt.Sprint(item.NumFundamentals), strings.Join(names, ", "))
		}

		fmt.Println(tbl)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list tickers in this category")
}
