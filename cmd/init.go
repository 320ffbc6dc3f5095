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
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvstock/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type dbConfig struct {
	Path string `toml:"path"`
}

type logConfig struct {
	Level string `toml:"level"`
}

type httpConfig struct {
	Timeout string `toml:"timeout"`
}

type edgarConfig struct {
	UserAgent string  `toml:"user_agent"`
	RateLimit float64 `toml:"rate_limit"`
}

type yahooConfig struct {
	UserAgent string `toml:"user_agent"`
}

type updateConfig struct {
	Fundamentals bool `toml:"fundamentals"`
}

type addConfig struct {
	RequireFundamentals bool `toml:"require_fundamentals"`
}

type healthchecksConfig struct {
	PingURL string `toml:"ping_url"`
}

// configFile mirrors the layout of $HOME/.pvstock.toml
type configFile struct {
	DB           dbConfig           `toml:"db"`
	Log          logConfig          `toml:"log"`
	HTTP         httpConfig         `toml:"http"`
	Edgar        edgarConfig        `toml:"edgar"`
	Yahoo        yahooConfig        `toml:"yahoo"`
	Update       updateConfig       `toml:"update"`
	Add          addConfig          `toml:"add"`
	Healthchecks healthchecksConfig `toml:"healthchecks"`
}

func currentConfig() *configFile {
	return &configFile{
		DB:           dbConfig{Path: viper.GetString("db.path")},
		Log:          logConfig{Level: viper.GetString("log.level")},
		HTTP:         httpConfig{Timeout: viper.GetDuration("http.timeout").String()},
		Edgar:        edgarConfig{UserAgent: viper.GetString("edgar.user_agent"), RateLimit: viper.GetFloat64("edgar.rate_limit")},
		Yahoo:        yahooConfig{UserAgent: viper.GetString("yahoo.user_agent")},
		Update:       updateConfig{Fundamentals: viper.GetBool("update.fundamentals")},
		Add:          addConfig{RequireFundamentals: viper.GetBool("add.require_fundamentals")},
		Healthchecks: healthchecksConfig{PingURL: viper.GetString("healthchecks.ping_url")},
	}
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration and create the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		config := currentConfig()

		form := huh.NewForm(
			// Where the database lives
			huh.NewGroup(
				huh.NewInput().
					Title("Where should the SQLite database be stored?").
					Value(&config.DB.Path).
					Validate(func(path string) error {
						if strings.TrimSpace(path) == "" {
							return errors.New("database path must not be empty")
						}
						return nil
					}),
			),

			// SEC requires callers to identify themselves
			huh.NewGroup(
				huh.NewInput().
					Title("SEC EDGAR user agent (application name and contact email):").
					Value(&config.Edgar.UserAgent).
					Validate(func(ua string) error {
						if !strings.Contains(ua, "@") {
							return errors.New("SEC asks for a contact email in the user agent")
						}
						return nil
					}),

				huh.NewConfirm().
					Title("Refresh fundamentals during every update?").
					Value(&config.Update.Fundamentals),

				huh.NewInput().
					Title("healthchecks.io ping url (optional):").
					Value(&config.Healthchecks.PingURL),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		log.Info().Str("DBPath", config.DB.Path).Msg("creating database tables")

		myLibrary := library.New(config.DB.Path)
		if err := myLibrary.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")

		configFN := cfgFile
		if configFN == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("could not determine user home directory")
			}
			configFN = filepath.Join(home, ".pvstock.toml")
		}

		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your stock library has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
