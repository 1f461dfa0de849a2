package db

import "fmt"

// Stats summarizes the archive contents
type Stats struct {
	ImportCount   int64
	EntryCount    int64
	AnalysisCount int64
	DBSizeBytes   int64
}

// AuthorCount is the number of archived messages of one author
type AuthorCount struct {
	Author       string
	MessageCount int64
}

// GetStats returns database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int64
		what  string
	}{
		{"SELECT COUNT(*) FROM imports", &stats.ImportCount, "imports"},
		{"SELECT COUNT(*) FROM chat_entries", &stats.EntryCount, "entries"},
		{"SELECT COUNT(*) FROM analyses", &stats.AnalysisCount, "analyses"},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.what, err)
		}
	}

	// Database size is page_count * page_size
	var pageCount, pageSize int64
	if err := db.conn.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}
	stats.DBSizeBytes = pageCount * pageSize

	return stats, nil
}

// GetTopAuthors returns the most active authors of an import, or of the
// whole archive when importID is empty
func (db *DB) GetTopAuthors(importID string, limit int) ([]*AuthorCount, error) {
	query := "SELECT author, COUNT(*) AS n FROM chat_entries"
	var args []interface{}
	if importID != "" {
		query += " WHERE import_id = ?"
		args = append(args, importID)
	}
	query += " GROUP BY author ORDER BY n DESC, author ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top authors: %w", err)
	}
	defer rows.Close()

	var authors []*AuthorCount
	for rows.Next() {
		var a AuthorCount
		if err := rows.Scan(&a.Author, &a.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan author stats: %w", err)
		}
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

// FormatSize renders a byte count for display
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
