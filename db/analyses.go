package db

import (
	"database/sql"
	"fmt"
	"time"

	"chat-analyzer/history"
)

// RecordAnalysis archives a history record. importID may be empty.
func (db *DB) RecordAnalysis(importID string, rec history.Record) error {
	_, err := db.conn.Exec(
		"INSERT INTO analyses (import_id, kind, result, timestamp, created_at) VALUES (?, ?, ?, ?, ?)",
		nullString(importID), string(rec.Type), rec.Result, rec.Timestamp, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns the archived results of an import, oldest first
func (db *DB) ListAnalyses(importID string) ([]*Analysis, error) {
	rows, err := db.conn.Query(
		"SELECT id, import_id, kind, result, timestamp, created_at FROM analyses WHERE import_id = ? ORDER BY id ASC",
		importID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	var a Analysis
	var importID sql.NullString
	if err := row.Scan(&a.ID, &importID, &a.Kind, &a.Result, &a.Timestamp, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}
	a.ImportID = importID.String
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
