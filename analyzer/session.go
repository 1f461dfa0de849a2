package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"chat-analyzer/chatlog"
	"chat-analyzer/history"
	"chat-analyzer/utils"
)

var (
	ErrNoAnalyzer    = errors.New("API key is not configured")
	ErrNoEntries     = errors.New("no chat data loaded")
	ErrNoResult      = errors.New("no analysis result available")
	ErrEmptyFeedback = errors.New("feedback is empty")
)

// Archive keeps imports and results beyond the JSON history. Failures are
// logged and never interrupt the session.
type Archive interface {
	SaveImport(source string, entries []chatlog.ChatEntry) (string, error)
	RecordAnalysis(importID string, rec history.Record) error
}

// Completion is handed to the caller once a request has been recorded
type Completion struct {
	Record  history.Record
	Result  Result
	SaveErr error // history file could not be written; memory is still updated
}

// Session holds the chat data and results of one application run. State
// changes happen on the goroutine the dispatcher delivers to.
type Session struct {
	mu         sync.Mutex
	analyzer   *Analyzer
	dispatcher *Dispatcher
	history    *history.Store
	archive    Archive
	logger     *utils.Logger
	now        func() time.Time

	entries  []chatlog.ChatEntry
	source   string
	importID string

	current    string
	hasCurrent bool
}

// NewSession creates a session over an existing history. The latest stored
// record, if any, becomes the current result.
func NewSession(store *history.Store, dispatcher *Dispatcher, logger *utils.Logger) *Session {
	s := &Session{
		dispatcher: dispatcher,
		history:    store,
		logger:     logger,
		now:        time.Now,
	}
	if latest, ok := store.Latest(); ok {
		s.current = latest.Result
		s.hasCurrent = true
	}
	return s
}

// SetArchive attaches an archive; nil detaches it
func (s *Session) SetArchive(archive Archive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = archive
}

// SetClock overrides the clock used for record timestamps and parsed lines
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetAnalyzer replaces the analyzer, typically after the settings change
func (s *Session) SetAnalyzer(a *Analyzer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzer = a
}

// Analyzer returns the current analyzer, or nil
func (s *Session) Analyzer() *Analyzer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer
}

// History returns the backing history store
func (s *Session) History() *history.Store {
	return s.history
}

// Busy reports whether a request is in flight
func (s *Session) Busy() bool {
	return s.dispatcher.Busy()
}

// LoadText parses pasted chat text and replaces the loaded entries
func (s *Session) LoadText(text string) (int, error) {
	entries, err := chatlog.ParseText(text, s.clock())
	if err != nil {
		return 0, err
	}
	return s.SetEntries(entries, "manual input")
}

// LoadFile imports a CSV or plain-text chat log and replaces the loaded
// entries
func (s *Session) LoadFile(path string) (int, error) {
	entries, err := chatlog.ImportFile(path, s.clock())
	if err != nil {
		return 0, err
	}
	return s.SetEntries(entries, filepath.Base(path))
}

// SetEntries replaces the loaded entries. An empty slice is rejected and
// leaves the previous entries in place.
func (s *Session) SetEntries(entries []chatlog.ChatEntry, source string) (int, error) {
	if len(entries) == 0 {
		return 0, chatlog.ErrNothingParsed
	}

	s.mu.Lock()
	s.entries = entries
	s.source = source
	s.importID = ""
	archive := s.archive
	s.mu.Unlock()

	s.logger.Info("Loaded %d chat entries from %s", len(entries), source)

	if archive != nil {
		id, err := archive.SaveImport(source, entries)
		if err != nil {
			s.logger.Warn("Failed to archive import %s: %v", source, err)
		} else {
			s.mu.Lock()
			s.importID = id
			s.mu.Unlock()
		}
	}
	return len(entries), nil
}

// SetArchivedEntries replaces the loaded entries with an import that is
// already in the archive. Results are recorded against importID and the
// entries are not archived a second time.
func (s *Session) SetArchivedEntries(importID string, entries []chatlog.ChatEntry, source string) (int, error) {
	if len(entries) == 0 {
		return 0, chatlog.ErrNothingParsed
	}

	s.mu.Lock()
	s.entries = entries
	s.source = source
	s.importID = importID
	s.mu.Unlock()

	s.logger.Info("Loaded %d archived chat entries from import %s (%s)", len(entries), importID, source)
	return len(entries), nil
}

// Entries returns the loaded entries
func (s *Session) Entries() []chatlog.ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// Source describes where the loaded entries came from
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Preview renders the first limit entries for display
func (s *Session) Preview(limit int) string {
	return chatlog.Preview(s.Entries(), limit)
}

// CurrentResult returns the result shown to the user
func (s *Session) CurrentResult() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// SelectRecord makes a past record the current result, so that the next
// feedback revises it
func (s *Session) SelectRecord(i int) (history.Record, error) {
	rec, ok := s.history.Get(i)
	if !ok {
		return history.Record{}, fmt.Errorf("history record %d does not exist", i)
	}

	s.mu.Lock()
	s.current = rec.Result
	s.hasCurrent = true
	s.mu.Unlock()
	return rec, nil
}

// StartAnalysis sends the loaded entries for summarization
func (s *Session) StartAnalysis(systemPrompt string, done func(Completion)) error {
	s.mu.Lock()
	a := s.analyzer
	entries := s.entries
	s.mu.Unlock()

	if a == nil {
		return ErrNoAnalyzer
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	transcript := chatlog.FormatTranscript(entries)
	s.logger.Info("Starting analysis of %d entries", len(entries))

	return s.dispatcher.Dispatch("analysis", func() Result {
		return a.Analyze(context.Background(), transcript, systemPrompt)
	}, func(res Result) {
		c := s.complete(history.KindAnalysis, res)
		if done != nil {
			done(c)
		}
	})
}

// StartImprovement asks for a revision of the current result
func (s *Session) StartImprovement(feedback string, done func(Completion)) error {
	s.mu.Lock()
	a := s.analyzer
	previous, hasCurrent := s.current, s.hasCurrent
	s.mu.Unlock()

	if a == nil {
		return ErrNoAnalyzer
	}
	if !hasCurrent {
		return ErrNoResult
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return ErrEmptyFeedback
	}

	s.logger.Info("Starting improvement with %d chars of feedback", len(feedback))

	return s.dispatcher.Dispatch("improvement", func() Result {
		return a.Improve(context.Background(), previous, feedback)
	}, func(res Result) {
		c := s.complete(history.KindImprovement, res)
		if done != nil {
			done(c)
		}
	})
}

// complete records a finished request. Failed requests are stored the same
// way as successful ones, with their failure text as the result.
func (s *Session) complete(kind history.Kind, res Result) Completion {
	res.Kind = kind
	if res.Err != nil {
		s.logger.Error("%s failed: %v", kind, res.Err)
	}

	s.mu.Lock()
	rec := history.NewRecord(kind, res.Text(), s.now())
	s.current = rec.Result
	s.hasCurrent = true
	archive, importID := s.archive, s.importID
	s.mu.Unlock()

	c := Completion{Record: rec, Result: res}
	if err := s.history.Append(rec); err != nil {
		s.logger.Error("Failed to save history: %v", err)
		c.SaveErr = err
	}

	if archive != nil {
		if err := archive.RecordAnalysis(importID, rec); err != nil {
			s.logger.Warn("Failed to archive %s result: %v", kind, err)
		}
	}
	return c
}

// ExportCSV writes the current result to path
func (s *Session) ExportCSV(path string) error {
	result, ok := s.CurrentResult()
	if !ok {
		return ErrNoResult
	}
	if err := utils.ExportResultCSV(path, result); err != nil {
		return err
	}
	s.logger.Info("Exported result to %s", path)
	return nil
}

func (s *Session) clock() func() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
