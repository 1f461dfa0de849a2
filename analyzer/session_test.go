package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chat-analyzer/chatlog"
	"chat-analyzer/history"
	"chat-analyzer/llm"
)

type fakeArchive struct {
	mu        sync.Mutex
	imports   []string
	analyses  []history.Record
	importIDs []string
	fail      bool
}

func (f *fakeArchive) SaveImport(source string, entries []chatlog.ChatEntry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("archive down")
	}
	f.imports = append(f.imports, source)
	return fmt.Sprintf("import-%d", len(f.imports)), nil
}

func (f *fakeArchive) RecordAnalysis(importID string, rec history.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("archive down")
	}
	f.analyses = append(f.analyses, rec)
	f.importIDs = append(f.importIDs, importID)
	return nil
}

func newTestSession(t *testing.T, p llm.Provider) (*Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	logger := quietLogger()
	s := NewSession(history.NewStore(path, logger), NewDispatcher(nil, logger), logger)
	s.SetClock(func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) })
	if p != nil {
		s.SetAnalyzer(New(p, nil, logger))
	}
	return s, path
}

func wait(t *testing.T, ch <-chan Completion) Completion {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for completion")
		return Completion{}
	}
}

func TestSession_UserInputErrors(t *testing.T) {
	noAnalyzer, _ := newTestSession(t, nil)
	if err := noAnalyzer.StartAnalysis("", nil); !errors.Is(err, ErrNoAnalyzer) {
		t.Errorf("Expected ErrNoAnalyzer, got %v", err)
	}

	s, _ := newTestSession(t, &fakeProvider{})
	if err := s.StartAnalysis("", nil); !errors.Is(err, ErrNoEntries) {
		t.Errorf("Expected ErrNoEntries, got %v", err)
	}
	if err := s.StartImprovement("更详细", nil); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult, got %v", err)
	}
	if err := s.ExportCSV(filepath.Join(t.TempDir(), "out.csv")); !errors.Is(err, ErrNoResult) {
		t.Errorf("Expected ErrNoResult from export, got %v", err)
	}
	if _, err := s.LoadText("\n   \n"); !errors.Is(err, chatlog.ErrNothingParsed) {
		t.Errorf("Expected ErrNothingParsed, got %v", err)
	}
	if s.History().Len() != 0 {
		t.Errorf("User input errors must not change history")
	}
}

func TestSession_AnalysisAndImprovements(t *testing.T) {
	calls := 0
	p := &fakeProvider{reply: func(msgs []llm.Message) (string, error) {
		calls++
		return fmt.Sprintf("result %d", calls), nil
	}}
	s, path := newTestSession(t, p)

	n, err := s.LoadText("[2024-01-01 10:00:00] 张三: 你好\n李四: 项目进度如何")
	if err != nil || n != 2 {
		t.Fatalf("LoadText: n=%d err=%v", n, err)
	}

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	c := wait(t, done)
	if c.Record.Type != history.KindAnalysis || c.Record.Result != "result 1" || c.SaveErr != nil {
		t.Errorf("Unexpected analysis completion %+v", c)
	}
	if c.Record.Timestamp != "2024-05-06 07:08:09" {
		t.Errorf("Unexpected timestamp %s", c.Record.Timestamp)
	}
	wantTranscript := "请分析以下聊天记录并提取关键信息：\n\n[2024-01-01 10:00:00] 张三: 你好\n[2024-05-06 07:08:09] 李四: 项目进度如何\n"
	if got := p.lastCall()[1].Content; got != wantTranscript {
		t.Errorf("Expected: %q, Got: %q", wantTranscript, got)
	}

	if err := s.StartImprovement("   ", nil); !errors.Is(err, ErrEmptyFeedback) {
		t.Errorf("Expected ErrEmptyFeedback, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.StartImprovement(" 更简短 ", func(c Completion) { done <- c }); err != nil {
			t.Fatal(err)
		}
		c = wait(t, done)
		if c.Record.Type != history.KindImprovement {
			t.Errorf("Expected improvement, got %s", c.Record.Type)
		}
	}
	want := "原始分析：\n\nresult 2\n\n用户反馈：\n\n更简短\n\n请根据反馈改进分析结果。"
	if got := p.lastCall()[1].Content; got != want {
		t.Errorf("Second improvement should revise the first one. Expected: %q, Got: %q", want, got)
	}

	reloaded := history.Load(path, quietLogger())
	records := reloaded.Records()
	if len(records) != 3 {
		t.Fatalf("Expected 3 records on disk, got %d", len(records))
	}
	wantTypes := []history.Kind{history.KindAnalysis, history.KindImprovement, history.KindImprovement}
	for i, kind := range wantTypes {
		if records[i].Type != kind || records[i].Result != fmt.Sprintf("result %d", i+1) {
			t.Errorf("record %d: unexpected %+v", i, records[i])
		}
	}
}

func TestSession_FailureStoredAsResult(t *testing.T) {
	p := &fakeProvider{reply: func([]llm.Message) (string, error) { return "", errors.New("401 unauthorized") }}
	s, _ := newTestSession(t, p)
	if _, err := s.LoadText("张三: 你好"); err != nil {
		t.Fatal(err)
	}

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	c := wait(t, done)

	if c.Result.OK() {
		t.Error("Expected failed result")
	}
	if c.Record.Result != "分析失败: 401 unauthorized" {
		t.Errorf("Unexpected stored text %q", c.Record.Result)
	}
	if current, _ := s.CurrentResult(); current != c.Record.Result {
		t.Errorf("Failure text should be the current result, got %q", current)
	}
	if s.History().Len() != 1 {
		t.Errorf("Failure should be stored in history")
	}
}

func TestSession_SelectRecordThenImprove(t *testing.T) {
	p := &fakeProvider{}
	s, _ := newTestSession(t, p)
	_ = s.History().Append(history.Record{Timestamp: "t1", Result: "第一版", Type: history.KindAnalysis})
	_ = s.History().Append(history.Record{Timestamp: "t2", Result: "第二版", Type: history.KindAnalysis})

	if _, err := s.SelectRecord(5); err == nil {
		t.Error("Expected error for missing record")
	}
	rec, err := s.SelectRecord(0)
	if err != nil || rec.Result != "第一版" {
		t.Fatalf("SelectRecord: %+v %v", rec, err)
	}

	done := make(chan Completion, 1)
	if err := s.StartImprovement("补充细节", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	wait(t, done)

	want := ImproveUserMessage("第一版", "补充细节")
	if got := p.lastCall()[1].Content; got != want {
		t.Errorf("Expected: %q, Got: %q", want, got)
	}
}

func TestSession_StartsFromLatestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	logger := quietLogger()
	store := history.NewStore(path, logger)
	_ = store.Append(history.Record{Timestamp: "t", Result: "上次的结果", Type: history.KindAnalysis})

	s := NewSession(history.Load(path, logger), NewDispatcher(nil, logger), logger)
	if current, ok := s.CurrentResult(); !ok || current != "上次的结果" {
		t.Errorf("Expected latest record as current result, got %q (%v)", current, ok)
	}
}

func TestSession_BusyRejectsSecondRequest(t *testing.T) {
	p := &fakeProvider{release: make(chan struct{})}
	s, _ := newTestSession(t, p)
	_, _ = s.LoadText("张三: 你好")

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	if err := s.StartAnalysis("", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if !s.Busy() {
		t.Error("Expected session to be busy")
	}

	close(p.release)
	wait(t, done)
	if s.History().Len() != 1 {
		t.Errorf("Expected exactly one record, got %d", s.History().Len())
	}
}

func TestSession_SaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	logger := quietLogger()
	s := NewSession(history.NewStore(filepath.Join(blocker, "results.json"), logger), NewDispatcher(nil, logger), logger)
	s.SetAnalyzer(New(&fakeProvider{}, nil, logger))
	_, _ = s.LoadText("张三: 你好")

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	c := wait(t, done)
	if c.SaveErr == nil {
		t.Error("Expected SaveErr when history cannot be written")
	}
	if current, ok := s.CurrentResult(); !ok || current != "ok" {
		t.Errorf("Result should still be current, got %q", current)
	}
}

func TestSession_ExportCSVDeterministic(t *testing.T) {
	s, _ := newTestSession(t, &fakeProvider{})
	_ = s.History().Append(history.Record{Timestamp: "t", Result: "要点一，\"引用\"\n要点二", Type: history.KindAnalysis})
	if _, err := s.SelectRecord(0); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	first, second := filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")
	if err := s.ExportCSV(first); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportCSV(second); err != nil {
		t.Fatal(err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Errorf("Exports differ:\n%s\n%s", a, b)
	}
	want := "analysis result\n\"要点一，\"\"引用\"\"\n要点二\"\n"
	if string(a) != want {
		t.Errorf("Expected: %q, Got: %q", want, string(a))
	}
}

func TestSession_Archive(t *testing.T) {
	archive := &fakeArchive{}
	s, _ := newTestSession(t, &fakeProvider{})
	s.SetArchive(archive)

	csvPath := filepath.Join(t.TempDir(), "chat.csv")
	if err := os.WriteFile(csvPath, []byte("time,author,message\n2024-01-01 10:00:00,王五,客户反馈很好\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if n, err := s.LoadFile(csvPath); err != nil || n != 1 {
		t.Fatalf("LoadFile: n=%d err=%v", n, err)
	}
	if s.Source() != "chat.csv" {
		t.Errorf("Unexpected source %s", s.Source())
	}

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	wait(t, done)

	if len(archive.imports) != 1 || len(archive.analyses) != 1 {
		t.Errorf("Expected archived import and analysis, got %d and %d", len(archive.imports), len(archive.analyses))
	}

	archive.fail = true
	if _, err := s.LoadText("李四: 还在吗"); err != nil {
		t.Errorf("Archive failures must not surface, got %v", err)
	}
}

func TestSession_ArchivedEntriesAreNotReimported(t *testing.T) {
	archive := &fakeArchive{}
	s, _ := newTestSession(t, &fakeProvider{})
	s.SetArchive(archive)

	if _, err := s.SetArchivedEntries("import-42", nil, "old.csv"); !errors.Is(err, chatlog.ErrNothingParsed) {
		t.Errorf("Expected ErrNothingParsed, Got: %v", err)
	}

	entries := []chatlog.ChatEntry{{Time: "2024-01-01 10:00:00", Author: "王五", Message: "客户反馈很好"}}
	if n, err := s.SetArchivedEntries("import-42", entries, "old.csv"); err != nil || n != 1 {
		t.Fatalf("SetArchivedEntries: n=%d err=%v", n, err)
	}
	if s.Source() != "old.csv" {
		t.Errorf("Expected: old.csv, Got: %s", s.Source())
	}

	done := make(chan Completion, 1)
	if err := s.StartAnalysis("", func(c Completion) { done <- c }); err != nil {
		t.Fatal(err)
	}
	wait(t, done)

	if len(archive.imports) != 0 {
		t.Errorf("Expected no new imports, Got: %v", archive.imports)
	}
	if len(archive.importIDs) != 1 || archive.importIDs[0] != "import-42" {
		t.Errorf("Expected analysis recorded against import-42, Got: %v", archive.importIDs)
	}
}
