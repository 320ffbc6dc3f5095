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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Bring every registered ticker up to date",
	Long: `The update sub-command downloads new daily prices for every ticker in the
library, resuming from the last stored day. With --fundamentals each ticker's
annual fundamentals are refreshed as well. A ticker that fails is logged and
skipped; the run continues with the next ticker.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		myLibrary := openLibrary(ctx)

		summary := newUpdater(myLibrary).UpdateAll(ctx, updaterOptions())
		fmt.Print(summary.String())

		if summary.Err != nil {
			log.Fatal().Err(summary.Err).Msg("update did not run")
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().Bool("fundamentals", false, "refresh fundamentals as well as prices")
	if err := viper.BindPFlag("update.fundamentals", updateCmd.Flags().Lookup("fundamentals")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for fundamentals failed")
	}
}
