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
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/penny-vault/pvstock/data"
	"github.com/penny-vault/pvstock/updater"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	showPeriod       string
	showOffset       int
	showFundamentals bool

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	headerStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <ticker>",
	Short: "Show stored prices or fundamentals for a ticker",
	Long: `The show sub-command prints the daily bars of a ticker for a chart window.
--period selects the window length (1M, 6M, 1Y or ALL) and --offset pages back
that many windows from the most recent bar. With --fundamentals the annual
fundamentals and derived ratios are printed instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		ticker, err := updater.NormalizeTicker(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("invalid ticker")
		}

		myLibrary := openLibrary(ctx)

		if showFundamentals {
			records, err := myLibrary.Fundamentals(ctx, ticker)
			if err != nil {
				log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not load fundamentals")
			}
			fmt.Println(fundamentalsTable(records))
			return
		}

		period, err := data.ParsePeriod(showPeriod)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid period")
		}

		bars, err := myLibrary.Prices(ctx, ticker)
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", ticker).Msg("could not load prices")
		}

		window := data.Window(bars, period, showOffset)
		if len(window) == 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf("no prices for %s in this window", ticker)))
			return
		}

		fmt.Println(priceTable(window))
		fmt.Printf("%s %s: %s to %s (%d bars)\n", ticker, period, window[0].Date, window[len(window)-1].Date, len(window))
	},
}

func styledTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(tableStyle)
}

// tableStyle styles the header row, which lipgloss numbers 0, apart from
// the data rows
func tableStyle(row, _ int) lipgloss.Style {
	if row == 0 {
		return headerStyle
	}
	return cellStyle
}

func priceTable(bars []*data.PriceBar) *table.Table {
	p := message.NewPrinter(language.English)
	tbl := styledTable().Headers("DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", "DIVIDEND", "SPLIT")

	for _, bar := range bars {
		tbl.Row(bar.Date,
			p.Sprintf("%.2f", bar.Open),
			p.Sprintf("%.2f", bar.High),
			p.Sprintf("%.2f", bar.Low),
			p.Sprintf("%.2f", bar.Close),
			p.Sprintf("%d", bar.Volume),
			p.Sprintf("%.2f", bar.Dividends),
			p.Sprintf("%.2f", bar.StockSplits),
		)
	}

	return tbl
}

func fundamentalsTable(records []*data.Fundamental) *table.Table {
	p := message.NewPrinter(language.English)

	amount := func(v *int64) string {
		if v == nil {
			return "-"
		}
		return p.Sprintf("%d", *v)
	}

	ratio := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 4, 64)
	}

	tbl := styledTable().Headers("YEAR", "REVENUE", "NET INCOME", "FCF", "GROSS", "OPER", "NET", "D/A", "EPS")
	for _, rec := range records {
		tbl.Row(strconv.Itoa(rec.Year),
			amount(rec.Revenue),
			amount(rec.NetIncome),
			amount(rec.FreeCashFlow),
			ratio(rec.GrossMargin),
			ratio(rec.OperatingMargin),
			ratio(rec.NetMargin),
			ratio(rec.DebtToAssetRatio),
			ratio(rec.EPS),
		)
	}

	return tbl
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showPeriod, "period", "p", "1M", "chart window: 1M, 6M, 1Y or ALL")
	showCmd.Flags().IntVarP(&showOffset, "offset", "o", 0, "number of windows to page back")
	showCmd.Flags().BoolVarP(&showFundamentals, "fundamentals", "f", false, "show annual fundamentals instead of prices")
}
