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
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/penny-vault/pvstock/db"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Library is the local SQLite store of price bars, annual fundamentals and
// categories. Every operation opens its own connection and closes it before
// returning.
type Library struct {
	DBPath string
}

func New(dbPath string) *Library {
	return &Library{
		DBPath: dbPath,
	}
}

func (myLibrary *Library) dsn() string {
	return fmt.Sprintf("%s?%s", myLibrary.DBPath, sqlitePragmas)
}

// Init creates the database file, and its parent directory, if they do not
// exist and migrates the schema to the latest version. Safe to call on every
// startup.
func (myLibrary *Library) Init(ctx context.Context) error {
	if err := ensureDir(myLibrary.DBPath); err != nil {
		return wrap("init", err)
	}

	if err := db.Migrate(fmt.Sprintf("sqlite://%s", myLibrary.dsn())); err != nil {
		log.Error().Err(err).Str("DBPath", myLibrary.DBPath).Msg("could not migrate database")
		return wrap("init", err)
	}

	return nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// connect opens the database for a single library operation. The caller must
// close the returned handle.
func (myLibrary *Library) connect(ctx context.Context) (*sql.DB, error) {
	if err := ensureDir(myLibrary.DBPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", myLibrary.dsn())
	if err != nil {
		return nil, err
	}

	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// withTx runs fn inside a transaction on a fresh connection, committing when
// fn succeeds and rolling back otherwise
func (myLibrary *Library) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	conn, err := myLibrary.connect(ctx)
	if err != nil {
		return wrap(op, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil {
			if !errors.Is(err, sql.ErrTxDone) {
				log.Error().Err(err).Str("Op", op).Msg("error rolling back tx")
			}
		}
	}()

	if err := fn(tx); err != nil {
		return wrap(op, err)
	}

	return wrap(op, tx.Commit())
}

// withConn runs fn against a fresh connection
func (myLibrary *Library) withConn(ctx context.Context, op string, fn func(conn *sql.DB) error) error {
	conn, err := myLibrary.connect(ctx)
	if err != nil {
		return wrap(op, err)
	}
	defer conn.Close()

	return wrap(op, fn(conn))
}

// DeleteTicker purges every price bar, fundamentals record and category
// association stored for ticker. It reports true when at least one price or
// fundamentals row was removed.
func (myLibrary *Library) DeleteTicker(ctx context.Context, ticker string) (bool, error) {
	var removed int64

	err := myLibrary.withTx(ctx, "delete ticker", func(tx *sql.Tx) error {
		for _, stmt := range []string{
			"DELETE FROM price_daily WHERE ticker = ?",
			"DELETE FROM fundamentals_annual WHERE ticker = ?",
		} {
			res, err := tx.ExecContext(ctx, stmt, ticker)
			if err != nil {
				return err
			}

			cnt, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += cnt
		}

		_, err := tx.ExecContext(ctx, "DELETE FROM ticker_categories WHERE ticker = ?", ticker)
		return err
	})

	if err != nil {
		return false, err
	}

	log.Info().Str("Ticker", ticker).Int64("NumRows", removed).Msg("deleted ticker")
	return removed > 0, nil
}
