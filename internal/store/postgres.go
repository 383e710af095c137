package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/models"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS job_listings (
	platform    TEXT        NOT NULL,
	url         TEXT        NOT NULL,
	title       TEXT        NOT NULL,
	company     TEXT        NOT NULL,
	location    TEXT        NOT NULL,
	description TEXT        NOT NULL,
	applied     BOOLEAN     NOT NULL DEFAULT FALSE,
	external_id TEXT,
	run_id      TEXT        NOT NULL,
	first_seen  TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (platform, url)
)`

// applied never flips back to false once recorded
const upsertListing = `
INSERT INTO job_listings (platform, url, title, company, location, description, applied, external_id, run_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
ON CONFLICT (platform, url) DO UPDATE SET
	title       = EXCLUDED.title,
	company     = EXCLUDED.company,
	location    = EXCLUDED.location,
	description = EXCLUDED.description,
	applied     = job_listings.applied OR EXCLUDED.applied,
	external_id = COALESCE(EXCLUDED.external_id, job_listings.external_id),
	run_id      = EXCLUDED.run_id,
	last_seen   = now()`

// dbtx is the part of pgxpool.Pool the sink uses
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgresSink upserts listings keyed by (platform, url)
type PostgresSink struct {
	db     dbtx
	pool   *pgxpool.Pool
	logger types.Logger
}

// NewPostgresSink connects, verifies the connection and creates the table
func NewPostgresSink(ctx context.Context, databaseURL string, logger types.Logger) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	sink := &PostgresSink{db: pool, pool: pool, logger: logger}
	if err := sink.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return sink, nil
}

// EnsureSchema creates the listings table when missing
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createListingsTable); err != nil {
		return fmt.Errorf("failed to create job_listings table: %w", err)
	}
	return nil
}

// Upsert records the listings of one run in a single batch
func (s *PostgresSink) Upsert(ctx context.Context, runID string, listings []*models.JobListing) error {
	if len(listings) == 0 {
		return nil
	}

	batch := buildUpsertBatch(runID, listings)
	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range listings {
		if _, err := results.Exec(); err != nil {
			s.logger.Error("Failed to store listings", map[string]interface{}{
				"run_id": runID,
				"error":  err.Error(),
			})
			return fmt.Errorf("failed to upsert listing: %w", err)
		}
	}

	s.logger.Debug("Stored listings", map[string]interface{}{
		"run_id": runID,
		"count":  len(listings),
	})
	return nil
}

func (s *PostgresSink) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func buildUpsertBatch(runID string, listings []*models.JobListing) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, j := range listings {
		batch.Queue(upsertListing,
			string(j.Platform), j.URL, j.Title, j.Company, j.Location, j.Description,
			j.Applied, j.ExternalID, runID,
		)
	}
	return batch
}
