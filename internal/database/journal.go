/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// JournalDb persists the local trading journal: every signed payload we
// submit and every quote the stream delivers.
type JournalDb struct {
	db *sql.DB
}

// SubmissionRecord is one signed payload submission
type SubmissionRecord struct {
	Id         string
	Kind       string // "open", "close", "cancel_open", or "cancel_close"
	SymbolPair string
	IsLong     bool
	Price      string // TEXT for exact decimal precision
	Amount     string
	Nonce      string
	TargetHash string
	Success    bool
	Detail     string
	CreatedAt  time.Time
}

// QuoteEventRecord is one quote received off the stream, kept as an
// append-only audit log.
type QuoteEventRecord struct {
	Id          int64
	QuoteId     string
	RfqId       string
	UserAddress string
	SPrice      string
	LPrice      string
	MinAmount   string
	MaxAmount   string
	RawJson     string
	ReceivedAt  time.Time
}

// NewJournalDb opens or creates the journal database
func NewJournalDb(dbPath string) (*JournalDb, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent write performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout to handle concurrent writes
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	journal := &JournalDb{db: db}

	if err := journal.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return journal, nil
}

func (db *JournalDb) createTables() error {
	submissionsTable := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		symbol_pair TEXT NOT NULL DEFAULT '',
		is_long BOOLEAN NOT NULL DEFAULT FALSE,

		-- Numeric fields stored as TEXT for exact decimal precision
		price TEXT NOT NULL DEFAULT '0',
		amount TEXT NOT NULL DEFAULT '0',

		nonce TEXT NOT NULL DEFAULT '',
		target_hash TEXT NOT NULL DEFAULT '',
		success BOOLEAN NOT NULL DEFAULT FALSE,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);`

	quoteEventsTable := `
	CREATE TABLE IF NOT EXISTS quote_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quote_id TEXT NOT NULL,
		rfq_id TEXT NOT NULL DEFAULT '',
		user_address TEXT NOT NULL DEFAULT '',
		s_price TEXT NOT NULL DEFAULT '0',
		l_price TEXT NOT NULL DEFAULT '0',
		min_amount TEXT NOT NULL DEFAULT '0',
		max_amount TEXT NOT NULL DEFAULT '0',
		raw_json TEXT NOT NULL DEFAULT '',
		received_at TIMESTAMP NOT NULL
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_submissions_kind ON submissions(kind);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_events_quote ON quote_events(quote_id);`,
		`CREATE INDEX IF NOT EXISTS idx_quote_events_received ON quote_events(received_at);`,
	}

	if _, err := db.db.Exec(submissionsTable); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	if _, err := db.db.Exec(quoteEventsTable); err != nil {
		return fmt.Errorf("failed to create quote_events table: %w", err)
	}

	for _, idx := range indexes {
		if _, err := db.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// InsertSubmission records a signed payload submission
func (db *JournalDb) InsertSubmission(rec *SubmissionRecord) error {
	query := `
	INSERT INTO submissions (
		id, kind, symbol_pair, is_long,
		price, amount, nonce, target_hash,
		success, detail, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.db.Exec(query,
		rec.Id, rec.Kind, rec.SymbolPair, rec.IsLong,
		rec.Price, rec.Amount, rec.Nonce, rec.TargetHash,
		rec.Success, rec.Detail, rec.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// GetSubmission retrieves a submission by id
func (db *JournalDb) GetSubmission(id string) (*SubmissionRecord, error) {
	query := `
	SELECT
		id, kind, symbol_pair, is_long,
		price, amount, nonce, target_hash,
		success, detail, created_at
	FROM submissions
	WHERE id = ?
	`

	var rec SubmissionRecord
	err := db.db.QueryRow(query, id).Scan(
		&rec.Id, &rec.Kind, &rec.SymbolPair, &rec.IsLong,
		&rec.Price, &rec.Amount, &rec.Nonce, &rec.TargetHash,
		&rec.Success, &rec.Detail, &rec.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return &rec, nil
}

// RecentSubmissions lists the newest submissions first
func (db *JournalDb) RecentSubmissions(limit int) ([]SubmissionRecord, error) {
	query := `
	SELECT
		id, kind, symbol_pair, is_long,
		price, amount, nonce, target_hash,
		success, detail, created_at
	FROM submissions
	ORDER BY created_at DESC
	LIMIT ?
	`

	rows, err := db.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var records []SubmissionRecord
	for rows.Next() {
		var rec SubmissionRecord
		if err := rows.Scan(
			&rec.Id, &rec.Kind, &rec.SymbolPair, &rec.IsLong,
			&rec.Price, &rec.Amount, &rec.Nonce, &rec.TargetHash,
			&rec.Success, &rec.Detail, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// InsertQuoteEvent appends a received quote to the audit log
func (db *JournalDb) InsertQuoteEvent(event *QuoteEventRecord) error {
	query := `
	INSERT INTO quote_events (
		quote_id, rfq_id, user_address,
		s_price, l_price, min_amount, max_amount,
		raw_json, received_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.db.Exec(query,
		event.QuoteId, event.RfqId, event.UserAddress,
		event.SPrice, event.LPrice, event.MinAmount, event.MaxAmount,
		event.RawJson, event.ReceivedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert quote event: %w", err)
	}

	return nil
}

// QuoteEventCount reports how many quotes have been journaled for an rfq
func (db *JournalDb) QuoteEventCount(rfqId string) (int64, error) {
	var count int64
	err := db.db.QueryRow(`SELECT COUNT(*) FROM quote_events WHERE rfq_id = ?`, rfqId).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quote events: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (db *JournalDb) Close() error {
	if db.db != nil {
		zap.L().Info("Closing trade journal database")
		return db.db.Close()
	}
	return nil
}
