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

	"github.com/charmbracelet/huh"
	"github.com/penny-vault/pvstock/updater"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var removeYes bool

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove <ticker>",
	Short: "Delete a ticker's prices, fundamentals and category memberships",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		ticker, err := updater.NormalizeTicker(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ticker")
		}

		confirmed := removeYes
		if !confirmed {
			confirmForm := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Delete all data stored for %s?", ticker)).
						Value(&confirmed),
				),
			)

			if err := confirmForm.Run(); err != nil {
				log.Fatal().Err(err).Msg("failed to run confirmation")
			}
		}

		if !confirmed {
			fmt.Println("Nothing removed")
			return
		}

		myLibrary := openLibrary(ctx)
		removed, err := newUpdater(myLibrary).RemoveTicker(ctx, ticker)
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not remove ticker")
		}

		if !removed {
			fmt.Println(warnStyle.Render(fmt.Sprintf("%s is not in the library", ticker)))
			return
		}

		fmt.Println(okStyle.Render(fmt.Sprintf("%s removed", ticker)))
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")
}
