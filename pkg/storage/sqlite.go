// Package storage persists collected records and run summaries in a local
// SQLite database. The table-level unique key mirrors the in-memory dedup
// identity, so re-running a collection is idempotent.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tagsignal/pkg/feed"
	"tagsignal/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT,
	author TEXT NOT NULL,
	author_defaulted INTEGER NOT NULL DEFAULT 0,
	observed_at TEXT NOT NULL,
	observed_at_defaulted INTEGER NOT NULL DEFAULT 0,
	body TEXT NOT NULL,
	likes INTEGER NOT NULL DEFAULT 0,
	reshares INTEGER NOT NULL DEFAULT 0,
	replies INTEGER NOT NULL DEFAULT 0,
	mentions TEXT,
	tags TEXT,
	source_tag TEXT,
	collected_at TEXT NOT NULL,
	UNIQUE(author, observed_at, body)
);

CREATE INDEX IF NOT EXISTS idx_records_source_tag ON records(source_tag);

CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	records INTEGER NOT NULL,
	target INTEGER NOT NULL,
	tags TEXT NOT NULL
);
`

// RunSummary is one collection run's accounting, persisted alongside the
// records it produced.
type RunSummary struct {
	Started  time.Time
	Finished time.Time
	Records  int
	Target   int
	Tags     []string
}

// Store is a SQLite-backed record sink.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, log logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The driver serializes access itself, but a single connection avoids
	// SQLITE_BUSY under concurrent writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.WithField("path", path).Debug("database opened")
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecords inserts records in one transaction, skipping rows whose
// dedup identity is already present. Returns the number of rows actually
// inserted.
func (s *Store) SaveRecords(ctx context.Context, records []feed.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO records
		(post_id, author, author_defaulted, observed_at, observed_at_defaulted,
		 body, likes, reshares, replies, mentions, tags, source_tag, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx,
			r.ID, r.Author, r.AuthorDefaulted, r.ObservedAt, r.ObservedAtDefaulted,
			r.Text, r.Engagement.Likes, r.Engagement.Reshares, r.Engagement.Replies,
			strings.Join(r.Mentions, ","), strings.Join(r.Tags, ","), r.SourceTag, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	s.log.InfoWithFields("records persisted", map[string]interface{}{
		"offered":  len(records),
		"inserted": inserted,
	})
	return inserted, nil
}

// SaveRun appends a run summary.
func (s *Store) SaveRun(ctx context.Context, run *RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, finished_at, records, target, tags)
		VALUES (?, ?, ?, ?, ?)`,
		run.Started.UTC().Format(time.RFC3339),
		run.Finished.UTC().Format(time.RFC3339),
		run.Records, run.Target, strings.Join(run.Tags, ","))
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Texts returns every stored record body, the corpus the signal pipeline
// consumes.
func (s *Store) Texts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM records WHERE body != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bodies: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan body: %w", err)
		}
		texts = append(texts, body)
	}
	return texts, rows.Err()
}

// RecordsByTag returns the stored records first observed under a tag.
func (s *Store) RecordsByTag(ctx context.Context, tag string) ([]feed.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, author, author_defaulted, observed_at, observed_at_defaulted,
		       body, likes, reshares, replies, mentions, tags, source_tag
		FROM records WHERE source_tag = ? ORDER BY observed_at`, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []feed.Record
	for rows.Next() {
		var r feed.Record
		var mentions, tags string
		if err := rows.Scan(&r.ID, &r.Author, &r.AuthorDefaulted, &r.ObservedAt, &r.ObservedAtDefaulted,
			&r.Text, &r.Engagement.Likes, &r.Engagement.Reshares, &r.Engagement.Replies,
			&mentions, &tags, &r.SourceTag); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Mentions = splitList(mentions)
		r.Tags = splitList(tags)
		records = append(records, r)
	}
	return records, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
