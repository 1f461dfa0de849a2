package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chat-analyzer/chatlog"
)

// ErrNotFound is returned when an archived import does not exist
var ErrNotFound = errors.New("not found")

// SaveImport archives a parsed chat log and returns its id
func (db *DB) SaveImport(source string, entries []chatlog.ChatEntry) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO imports (id, source, entry_count, created_at) VALUES (?, ?, ?, ?)",
		id, source, len(entries), time.Now(),
	); err != nil {
		return "", fmt.Errorf("failed to create import: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO chat_entries (import_id, seq, time, author, message) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(id, i, e.Time, e.Author, e.Message); err != nil {
			return "", fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit import: %w", err)
	}
	return id, nil
}

// GetImport retrieves an import by id
func (db *DB) GetImport(id string) (*Import, error) {
	var imp Import
	err := db.conn.QueryRow(
		"SELECT id, source, entry_count, created_at FROM imports WHERE id = ?",
		id,
	).Scan(&imp.ID, &imp.Source, &imp.EntryCount, &imp.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import: %w", err)
	}
	return &imp, nil
}

// ListImports returns the most recent imports first
func (db *DB) ListImports(limit int) ([]*Import, error) {
	rows, err := db.conn.Query(
		"SELECT id, source, entry_count, created_at FROM imports ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	var imports []*Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.EntryCount, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		imports = append(imports, &imp)
	}
	return imports, rows.Err()
}

// ListEntries returns the chat entries of an import in their original order
func (db *DB) ListEntries(importID string) ([]chatlog.ChatEntry, error) {
	rows, err := db.conn.Query(
		"SELECT time, author, message FROM chat_entries WHERE import_id = ? ORDER BY seq ASC",
		importID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []chatlog.ChatEntry
	for rows.Next() {
		var e chatlog.ChatEntry
		if err := rows.Scan(&e.Time, &e.Author, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteImport removes an import and its entries. Archived analyses of the
// import are kept.
func (db *DB) DeleteImport(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chat_entries WHERE import_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	res, err := tx.Exec("DELETE FROM imports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
