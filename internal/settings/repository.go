// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
)

type sqliteRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewRepository constructs the SQLite-backed [Repository] over an open
// connection.
func NewRepository(db *DB, logger *logger.Logger) Repository {
	return &sqliteRepository{db: db, logger: logger}
}

func (r *sqliteRepository) GetCategory(ctx context.Context, name string) (string, error) {
	query, args, err := sq.Select("value").
		From("settings").
		Where(sq.Eq{"category": name}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build get category query: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCategoryNotFound
	}
	if err != nil {
		r.logger.Err(err).Str("category", name).Msg("failed to query category")
		return "", fmt.Errorf("%w: get category %s: %v", ErrStorageUnavailable, name, err)
	}

	return value, nil
}

func (r *sqliteRepository) GetAllCategories(ctx context.Context) (map[string]string, error) {
	query, args, err := sq.Select("category", "value").From("settings").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get all categories query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).Msg("failed to query all categories")
		return nil, fmt.Errorf("%w: get all categories: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err = rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out[name] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return out, nil
}

func (r *sqliteRepository) UpsertCategory(ctx context.Context, name, value string) error {
	query, args, err := sq.Insert("settings").
		Columns("category", "value").
		Values(name, value).
		Suffix("ON CONFLICT(category) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert category query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("category", name).Msg("failed to upsert category")
		return fmt.Errorf("%w: upsert category %s: %v", ErrStorageUnavailable, name, err)
	}

	return nil
}

func (r *sqliteRepository) GetMeta(ctx context.Context, key string) (string, error) {
	query, args, err := sq.Select("value").
		From("meta").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build get meta query: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMetaNotFound
	}
	if err != nil {
		r.logger.Err(err).Str("key", key).Msg("failed to query meta")
		return "", fmt.Errorf("%w: get meta %s: %v", ErrStorageUnavailable, key, err)
	}

	return value, nil
}

func (r *sqliteRepository) SetMeta(ctx context.Context, key, value string) error {
	query, args, err := sq.Insert("meta").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return fmt.Errorf("build set meta query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("key", key).Msg("failed to set meta")
		return fmt.Errorf("%w: set meta %s: %v", ErrStorageUnavailable, key, err)
	}

	return nil
}
