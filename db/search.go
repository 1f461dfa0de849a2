package db

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const snippetRadius = 32

// SearchResult is an archived analysis matching a query
type SearchResult struct {
	Analysis *Analysis
	Snippet  string
}

// EntryResult is an archived chat entry matching a query
type EntryResult struct {
	ImportID string
	Source   string
	Time     string
	Author   string
	Message  string
}

// SearchAnalyses finds archived results containing query, newest first
func (db *DB) SearchAnalyses(query string, limit int) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := db.conn.Query(`
		SELECT id, import_id, kind, result, timestamp, created_at
		FROM analyses
		WHERE result LIKE ? ESCAPE '\'
		ORDER BY id DESC
		LIMIT ?
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search analyses: %w", err)
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, &SearchResult{
			Analysis: a,
			Snippet:  makeSnippet(a.Result, query, snippetRadius),
		})
	}
	return results, rows.Err()
}

// SearchEntries finds archived chat messages or authors containing query
func (db *DB) SearchEntries(query string, limit int) ([]*EntryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	pattern := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT e.import_id, i.source, e.time, e.author, e.message
		FROM chat_entries e
		JOIN imports i ON e.import_id = i.id
		WHERE e.message LIKE ? ESCAPE '\' OR e.author LIKE ? ESCAPE '\'
		ORDER BY i.created_at DESC, e.seq ASC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	var results []*EntryResult
	for rows.Next() {
		var r EntryResult
		if err := rows.Scan(&r.ImportID, &r.Source, &r.Time, &r.Author, &r.Message); err != nil {
			return nil, fmt.Errorf("failed to scan entry result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

// makeSnippet cuts radius runes of context around the first case-insensitive
// match of query in text
func makeSnippet(text, query string, radius int) string {
	text = strings.Join(strings.Fields(text), " ")

	// Byte offsets in the lowered text only line up with text when
	// lowering kept the length
	idx := 0
	lower := strings.ToLower(text)
	if len(lower) == len(text) {
		if i := strings.Index(lower, strings.ToLower(query)); i >= 0 {
			idx = i
		}
	} else if i := strings.Index(text, query); i >= 0 {
		idx = i
	}

	start := utf8.RuneCountInString(text[:idx])
	runes := []rune(text)
	from := start - radius
	if from < 0 {
		from = 0
	}
	to := start + utf8.RuneCountInString(query) + radius
	if to > len(runes) {
		to = len(runes)
	}

	snippet := string(runes[from:to])
	if from > 0 {
		snippet = "..." + snippet
	}
	if to < len(runes) {
		snippet += "..."
	}
	return snippet
}
