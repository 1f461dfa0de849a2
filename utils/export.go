package utils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResultCSVHeader is the single header cell of an exported result
const ResultCSVHeader = "analysis result"

// WriteResultCSV writes an analysis result as a two-row CSV: the header cell
// and one row holding the full text
func WriteResultCSV(w io.Writer, result string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{ResultCSVHeader}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.Write([]string{result}); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ExportResultCSV writes an analysis result to a CSV file
func ExportResultCSV(path, result string) error {
	var buf bytes.Buffer
	if err := WriteResultCSV(&buf, result); err != nil {
		return err
	}
	if err := WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to export result: %w", err)
	}
	return nil
}

// GenerateExportFilename generates a timestamped filename for an export
func GenerateExportFilename(prefix, ext string) string {
	sanitized := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			return '_'
		}
		return r
	}, prefix)

	runes := []rune(sanitized)
	if len(runes) > 50 {
		sanitized = string(runes[:50])
	}
	if sanitized == "" {
		sanitized = "analysis"
	}

	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", sanitized, timestamp, strings.TrimPrefix(ext, "."))
}

// GetDefaultExportPath returns the default export directory, creating it if needed
func GetDefaultExportPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	exportDir := filepath.Join(homeDir, "Documents", "ChatAnalyzer_Exports")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", err
	}

	return exportDir, nil
}
