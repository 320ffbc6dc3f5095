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

	"github.com/penny-vault/pvstock/updater"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// categoryCmd represents the category command
var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories used to group tickers",
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new category",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		category, err := openLibrary(ctx).CreateCategory(ctx, args[0])
		if err != nil {
			log.Fatal().Err(err).Str("Category", args[0]).Msg("could not create category")
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("created category %s", category.Name)))
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := openLibrary(ctx).RenameCategory(ctx, args[0], args[1]); err != nil {
			log.Fatal().Err(err).Str("Category", args[0]).Msg("could not rename category")
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("renamed %s to %s", args[0], args[1])))
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a category; its tickers are kept",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := openLibrary(ctx).DeleteCategory(ctx, args[0]); err != nil {
			log.Fatal().Err(err).Str("Category", args[0]).Msg("could not delete category")
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("deleted category %s", args[0])))
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories and their tickers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		myLibrary := openLibrary(ctx)

		categories, err := myLibrary.Categories(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not list categories")
		}

		tbl := styledTable().Headers("CATEGORY", "TICKERS")
		for _, category := range categories {
			tickers, err := myLibrary.CategoryTickers(ctx, category.Name)
			if err != nil {
				log.Fatal().Err(err).Str("Category", category.Name).Msg("could not list category tickers")
			}
			tbl.Row(category.Name, fmt.Sprint(tickers))
		}

		fmt.Println(tbl)
	},
}

var categoryTagCmd = &cobra.Command{
	Use:   "tag <category> <ticker>...",
	Short: "Add tickers to a category",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMembership(args, true)
	},
}

var categoryUntagCmd = &cobra.Command{
	Use:   "untag <category> <ticker>...",
	Short: "Remove tickers from a category",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runMembership(args, false)
	},
}

func runMembership(args []string, add bool) {
	ctx := context.Background()
	myLibrary := openLibrary(ctx)
	categoryName := args[0]

	tbl := styledTable().Headers("TICKER", "CATEGORY", "CHANGED")
	for _, raw := range args[1:] {
		ticker, err := updater.NormalizeTicker(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ticker")
		}

		var changed bool
		if add {
			changed, err = myLibrary.TagTicker(ctx, ticker, categoryName)
		} else {
			changed, err = myLibrary.UntagTicker(ctx, ticker, categoryName)
		}

		if err != nil {
			log.Fatal().Err(err).Str("Ticker", ticker).Str("Category", categoryName).Msg("could not update category membership")
		}

		tbl.Row(ticker, categoryName, fmt.Sprint(changed))
	}

	fmt.Println(tbl)
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryCreateCmd, categoryRenameCmd, categoryDeleteCmd,
		categoryListCmd, categoryTagCmd, categoryUntagCmd)
}
