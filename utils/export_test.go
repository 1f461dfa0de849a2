package utils

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteResultCSV(t *testing.T) {
	result := "## 总结\n- 张三说: \"上线\"\n- 李四, 王五"

	var buf bytes.Buffer
	if err := WriteResultCSV(&buf, result); err != nil {
		t.Fatalf("WriteResultCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != ResultCSVHeader {
		t.Errorf("Expected: %s, Got: %s", ResultCSVHeader, rows[0][0])
	}
	if rows[1][0] != result {
		t.Errorf("Expected: %q, Got: %q", result, rows[1][0])
	}
}

func TestExportResultCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := ExportResultCSV(path, "first"); err != nil {
		t.Fatal(err)
	}
	if err := ExportResultCSV(path, "second"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("Expected file to be replaced, got:\n%s", data)
	}
}

func TestGenerateExportFilename(t *testing.T) {
	tests := []struct {
		prefix string
		ext    string
		start  string
	}{
		{"analysis", "csv", "analysis_"},
		{"a/b:c", ".csv", "a_b_c_"},
		{"", "md", "analysis_"},
	}

	for _, tt := range tests {
		got := GenerateExportFilename(tt.prefix, tt.ext)
		if !strings.HasPrefix(got, tt.start) {
			t.Errorf("GenerateExportFilename(%q): Expected prefix %s, Got: %s", tt.prefix, tt.start, got)
		}
		if !strings.HasSuffix(got, "."+strings.TrimPrefix(tt.ext, ".")) || strings.Contains(got, "..") {
			t.Errorf("GenerateExportFilename(%q): unexpected extension in %s", tt.prefix, got)
		}
	}
}

func TestWriteFileAtomic_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.json")

	if err := WriteJSONFileAtomic(path, map[string]string{"k": "<值>"}, "    "); err != nil {
		t.Fatalf("WriteJSONFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"k": "<值>"`) {
		t.Errorf("Expected unescaped value, got:\n%s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, found %d entries", len(entries))
	}
}
