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

// Package store persists finished panels and build history to postgres.
package store

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/penny-vault/pvpanel/data"
	"github.com/rs/zerolog"
)

const panelTable = "panels"

// Store wraps the panel database.
type Store struct {
	DBUrl string

	Pool *pgxpool.Pool
}

// BuildRecord is one row of build history.
type BuildRecord struct {
	ID              uuid.UUID `db:"id"`
	Dataset         string    `db:"dataset"`
	StartTime       time.Time `db:"start_time"`
	EndTime         time.Time `db:"end_time"`
	NumObservations int       `db:"num_observations"`
	NumRows         int       `db:"num_rows"`
	NumEntities     int       `db:"num_entities"`
	SkippedWindows  []string  `db:"skipped_windows"`
	CreatedOn       time.Time `db:"created_on"`
}

// New connects to the database at dbURL.
func New(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	return &Store{
		DBUrl: dbURL,
		Pool:  pool,
	}, nil
}

// Close the database pool
func (myStore *Store) Close() {
	myStore.Pool.Close()
}

// SavePanel upserts every row of a finished panel. Re-saving an identical
// panel leaves the table unchanged.
func (myStore *Store) SavePanel(ctx context.Context, dataset string, rows []*data.PanelRow) error {
	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, row := range rows {
		if err := row.SaveDB(ctx, dataset, panelTable, conn); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Info().Str("Dataset", dataset).Int("NumRows", len(rows)).Msg("saved panel to database")
	return nil
}

// RecordBuild appends the run summary to the build history.
func (myStore *Store) RecordBuild(ctx context.Context, summary data.RunSummary) error {
	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO builds (
		"id",
		"dataset",
		"start_time",
		"end_time",
		"num_observations",
		"num_rows",
		"num_entities",
		"skipped_windows"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	)`, summary.RunID, summary.Dataset, summary.StartTime, summary.EndTime,
		summary.NumObservations, summary.NumRows, summary.NumEntities,
		summary.SkippedWindows)

	return err
}

// Builds returns build history, most recent first.
func (myStore *Store) Builds(ctx context.Context) ([]*BuildRecord, error) {
	var builds []*BuildRecord
	err := pgxscan.Select(ctx, myStore.Pool, &builds,
		`SELECT id, dataset, start_time, end_time, num_observations, num_rows,
num_entities, skipped_windows, created_on FROM builds ORDER BY end_time DESC`)

	return builds, err
}

// NumRows returns the stored row count for one dataset.
func (myStore *Store) NumRows(ctx context.Context, dataset string) (int, error) {
	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, `SELECT count(*) FROM panels WHERE dataset=$1`, dataset).Scan(&count)
	return count, err
}

// NumEntities returns the distinct ticker count for one dataset.
func (myStore *Store) NumEntities(ctx context.Context, dataset string) (int, error) {
	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, `SELECT count(DISTINCT ticker) FROM panels WHERE dataset=$1`, dataset).Scan(&count)
	return count, err
}

// LastBuild returns the end time of the most recent build of one dataset,
// or the zero time when the dataset has never been built.
func (myStore *Store) LastBuild(ctx context.Context, dataset string) (time.Time, error) {
	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastBuild time.Time
	err = conn.QueryRow(ctx, `SELECT coalesce(max(end_time), '0001-01-01'::timestamp) FROM builds WHERE dataset=$1`, dataset).Scan(&lastBuild)
	if err != nil {
		return time.Time{}, err
	}

	return lastBuild, nil
}
