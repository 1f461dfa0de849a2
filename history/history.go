package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"chat-analyzer/chatlog"
	"chat-analyzer/utils"
)

// Kind tells whether a record came from a first analysis or a revision
type Kind string

const (
	KindAnalysis    Kind = "analysis"
	KindImprovement Kind = "improvement"
)

// Record is one stored outcome of an analysis or improvement call
type Record struct {
	Timestamp string `json:"timestamp"`
	Result    string `json:"result"`
	Type      Kind   `json:"type"`
}

// NewRecord creates a record stamped with now
func NewRecord(kind Kind, result string, now time.Time) Record {
	return Record{
		Timestamp: now.Format(chatlog.TimeLayout),
		Result:    result,
		Type:      kind,
	}
}

// Label is the one-line description shown in history lists
func (r Record) Label() string {
	typeText := "分析"
	if r.Type == KindImprovement {
		typeText = "改进"
	}
	return fmt.Sprintf("%s - %s结果", r.Timestamp, typeText)
}

// Store is the append-only list of records, mirrored in full to a JSON file
// after every append
type Store struct {
	mu      sync.RWMutex
	path    string
	records []Record
	logger  *utils.Logger
}

// NewStore creates an empty store backed by path
func NewStore(path string, logger *utils.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the history file at path. A missing or unreadable file yields an
// empty store; the failure is logged, not returned.
func Load(path string, logger *utils.Logger) *Store {
	s := NewStore(path, logger)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("No history at %s, starting empty", path)
		} else {
			logger.Warn("Failed to read history %s: %v", path, err)
		}
		return s
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("Failed to parse history %s, starting empty: %v", path, err)
		return s
	}

	s.records = records
	logger.Info("Loaded %d history records from %s", len(records), path)
	return s
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Append adds rec and rewrites the history file. The record is kept in
// memory even when writing the file fails.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	snapshot := s.records
	if snapshot == nil {
		snapshot = []Record{}
	}
	if err := utils.WriteJSONFileAtomic(s.path, snapshot, "    "); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Records returns a copy of all records in append order
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record at index i
func (s *Store) Get(i int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.records) {
		return Record{}, false
	}
	return s.records[i], true
}

// Latest returns the most recently appended record
func (s *Store) Latest() (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}
