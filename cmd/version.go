// Copyright 2023
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
	"fmt"
	"strings"

	"github.com/penny-vault/pvstock/pkginfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	versionDeps  bool
	versionShort bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print pvstock version, build and data source settings",
	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Println(pkginfo.ResolvedVersion())
			return
		}

		fmt.Println(pkginfo.BuildVersionString())

		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			configFile = "none"
		}

		tbl := styledTable().Headers("SETTING", "VALUE").
			Row("Config", configFile).
			Row("Database", viper.GetString("db.path")).
			Row("HTTP Timeout", viper.GetDuration("http.timeout").String()).
			Row("Yahoo User-Agent", viper.GetString("yahoo.user_agent")).
			Row("SEC User-Agent", viper.GetString("edgar.user_agent")).
			Row("SEC Rate Limit", fmt.Sprintf("%.0f req/s", viper.GetFloat64("edgar.rate_limit")))
		fmt.Println()
		fmt.Println(tbl)

		if versionDeps {
			fmt.Println()
			fmt.Println(strings.Join(pkginfo.GetDependencyList(), "\n"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionDeps, "deps", "d", false, "print linked module versions")
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "only print the version number")
}
