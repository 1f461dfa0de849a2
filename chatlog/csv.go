package chatlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReadCSV reads a chat table whose first row is a header. Each following row
// maps positionally to time, author and message; extra columns are ignored
// and rows with fewer than three fields are skipped.
func ReadCSV(r io.Reader) ([]ChatEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	var entries []ChatEntry
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if len(row) < 3 {
			continue
		}
		entries = append(entries, ChatEntry{
			Time:    row[0],
			Author:  row[1],
			Message: row[2],
		})
	}

	return entries, nil
}

// ImportCSVFile reads chat entries from a CSV file
func ImportCSVFile(path string) ([]ChatEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ImportFile reads chat entries from a file, choosing the CSV reader for
// .csv files and the text parser for everything else
func ImportFile(path string, now func() time.Time) ([]ChatEntry, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ImportCSVFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat file: %w", err)
	}
	return ParseText(string(data), now)
}
