package db

import "time"

// Import is one chat log loaded into the application
type Import struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	EntryCount int       `json:"entry_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Analysis is an archived summary or revision
type Analysis struct {
	ID        int64     `json:"id"`
	ImportID  string    `json:"import_id"` // empty when the chat data was not archived
	Kind      string    `json:"kind"`      // "analysis" or "improvement"
	Result    string    `json:"result"`
	Timestamp string    `json:"timestamp"` // as shown in the history list
	CreatedAt time.Time `json:"created_at"`
}
