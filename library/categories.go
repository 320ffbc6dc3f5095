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
package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/penny-vault/pvstock/data"
	"github.com/rs/zerolog/log"
)

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidCategoryName
	}
	return name, nil
}

func categoryByName(ctx context.Context, q sqlscan.Querier, name string) (*data.Category, error) {
	category := &data.Category{}
	if err := sqlscan.Get(ctx, q, category, "SELECT id, name FROM categories WHERE name = ?", name); err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
		}
		return nil, err
	}
	return category, nil
}

// CreateCategory adds a new category. Names are trimmed and must be unique.
func (myLibrary *Library) CreateCategory(ctx context.Context, name string) (*data.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &data.Category{Name: name}
	err = myLibrary.withConn(ctx, "create category", func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrCategoryExists, name)
			}
			return err
		}

		category.ID, err = res.LastInsertId()
		return err
	})

	if err != nil {
		return nil, err
	}

	log.Info().Str("Category", name).Int64("CategoryID", category.ID).Msg("created category")
	return category, nil
}

// RenameCategory changes the name of an existing category. Ticker
// associations are kept.
func (myLibrary *Library) RenameCategory(ctx context.Context, oldName, newName string) error {
	oldName = strings.TrimSpace(oldName)
	newName, err := normalizeCategoryName(newName)
	if err != nil {
		return err
	}

	return myLibrary.withConn(ctx, "rename category", func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx, "UPDATE categories SET name = ? WHERE name = ?", newName, oldName)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", ErrCategoryExists, newName)
			}
			return err
		}

		cnt, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if cnt == 0 {
			return fmt.Errorf("%w: %q", ErrCategoryNotFound, oldName)
		}

		return nil
	})
}

// DeleteCategory removes a category and all of its ticker associations. The
// tickers themselves and their data are left untouched.
func (myLibrary *Library) DeleteCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return myLibrary.withConn(ctx, "delete category", func(conn *sql.DB) error {
		res, err := conn.ExecContext(ctx, "DELETE FROM categories WHERE name = ?", name)
		if err != nil {
			return err
		}

		cnt, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if cnt == 0 {
			return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
		}

		return nil
	})
}

// Categories returns all categories ordered by name
func (myLibrary *Library) Categories(ctx context.Context) ([]*data.Category, error) {
	categories := []*data.Category{}
	err := myLibrary.withConn(ctx, "list categories", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &categories, "SELECT id, name FROM categories ORDER BY name")
	})
	return categories, err
}

// CategoryByName looks up a category by its exact (trimmed) name
func (myLibrary *Library) CategoryByName(ctx context.Context, name string) (*data.Category, error) {
	var category *data.Category
	err := myLibrary.withConn(ctx, "get category", func(conn *sql.DB) error {
		var err error
		category, err = categoryByName(ctx, conn, strings.TrimSpace(name))
		return err
	})
	return category, err
}

// TagTicker associates ticker with the named category. Only tickers with
// stored prices can be tagged. Associating a ticker that is already in the
// category is a no-op; the returned bool reports whether a new association
// was created.
func (myLibrary *Library) TagTicker(ctx context.Context, ticker, categoryName string) (bool, error) {
	var added bool
	err := myLibrary.withTx(ctx, "tag ticker", func(tx *sql.Tx) error {
		category, err := categoryByName(ctx, tx, strings.TrimSpace(categoryName))
		if err != nil {
			return err
		}

		var tracked bool
		if err := sqlscan.Get(ctx, tx, &tracked, "SELECT EXISTS (SELECT 1 FROM price_daily WHERE ticker = ?)", ticker); err != nil {
			return err
		}
		if !tracked {
			return fmt.Errorf("%w: %s", ErrTickerNotTracked, ticker)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO ticker_categories (ticker, category_id) VALUES (?, ?)
ON CONFLICT (ticker, category_id) DO NOTHING`, ticker, category.ID)
		if err != nil {
			return err
		}

		cnt, err := res.RowsAffected()
		added = cnt > 0
		return err
	})
	return added, err
}

// UntagTicker removes ticker from the named category. The returned bool
// reports whether an association existed.
func (myLibrary *Library) UntagTicker(ctx context.Context, ticker, categoryName string) (bool, error) {
	var removed bool
	err := myLibrary.withTx(ctx, "untag ticker", func(tx *sql.Tx) error {
		category, err := categoryByName(ctx, tx, strings.TrimSpace(categoryName))
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM ticker_categories WHERE ticker = ? AND category_id = ?", ticker, category.ID)
		if err != nil {
			return err
		}

		cnt, err := res.RowsAffected()
		removed = cnt > 0
		return err
	})
	return removed, err
}

// TickerCategories returns the categories ticker belongs to
func (myLibrary *Library) TickerCategories(ctx context.Context, ticker string) ([]*data.Category, error) {
	categories := []*data.Category{}
	err := myLibrary.withConn(ctx, "ticker categories", func(conn *sql.DB) error {
		return sqlscan.Select(ctx, conn, &categories, `SELECT c.id, c.name FROM categories c
JOIN ticker_categories tc ON tc.category_id = c.id WHERE tc.ticker = ? ORDER BY c.name`, ticker)
	})
	return categories, err
}

// CategoryTickers returns the tickers associated with the named category
func (myLibrary *Library) CategoryTickers(ctx context.Context, categoryName string) ([]string, error) {
	tickers := []string{}
	err := myLibrary.withConn(ctx, "category tickers", func(conn *sql.DB) error {
		category, err := categoryByName(ctx, conn, strings.TrimSpace(categoryName))
		if err != nil {
			return err
		}

		return sqlscan.Select(ctx, conn, &tickers, "SELECT ticker FROM ticker_categories WHERE category_id = ? ORDER BY ticker", category.ID)
	})
	return tickers, err
}
