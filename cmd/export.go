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
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/gosimple/slug"
	"github.com/penny-vault/pvstock/updater"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportDir          string
	exportFundamentals bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <ticker>...",
	Short: "Write stored prices or fundamentals to CSV files",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		myLibrary := openLibrary(ctx)

		if err := os.MkdirAll(exportDir, 0755); err != nil {
			log.Fatal().Err(err).Str("Dir", exportDir).Msg("could not create export directory")
		}

		for _, raw := range args {
			ticker, err := updater.NormalizeTicker(raw)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid ticker")
			}

			kind := "prices"
			if exportFundamentals {
				kind = "fundamentals"
			}

			fn := filepath.Join(exportDir, fmt.Sprintf("%s.csv", slug.Make(fmt.Sprintf("%s %s", ticker, kind))))
			fh, err := os.Create(fn)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("could not create export file")
			}

			var numRows int
			if exportFundamentals {
				records, err := myLibrary.Fundamentals(ctx, ticker)
				if err != nil {
					log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not load fundamentals")
				}
				numRows = len(records)
				err = gocsv.MarshalFile(&records, fh)
				if err != nil {
					log.Fatal().Err(err).Str("FileName", fn).Msg("could not write csv")
				}
			} else {
				bars, err := myLibrary.Prices(ctx, ticker)
				if err != nil {
					log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not load prices")
				}
				numRows = len(bars)
				err = gocsv.MarshalFile(&bars, fh)
				if err != nil {
					log.Fatal().Err(err).Str("FileName", fn).Msg("could not write csv")
				}
			}

			if err := fh.Close(); err != nil {
				log.Fatal().Err(err).Str("FileName", fn).Msg("could not close export file")
			}

			log.Info().Str("Ticker", ticker).Str("FileName", fn).Int("NumRows", numRows).Msg("exported")
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "directory to write csv files to")
	exportCmd.Flags().BoolVarP(&exportFundamentals, "fundamentals", "f", false, "export annual fundamentals instead of prices")
}
