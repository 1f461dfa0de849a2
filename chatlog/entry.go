package chatlog

import (
	"fmt"
	"strings"
)

// TimeLayout is the timestamp format of synthesized chat times and history
// records
const TimeLayout = "2006-01-02 15:04:05"

// UnknownAuthor is assigned to lines that carry no author
const UnknownAuthor = "unknown"

// DefaultPreviewLimit is the number of entries shown by Preview when no limit is given
const DefaultPreviewLimit = 10

// ChatEntry represents one normalized line of chat history
type ChatEntry struct {
	Time    string `json:"time"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

// String renders the entry in transcript form
func (e ChatEntry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Time, e.Author, e.Message)
}

// FormatTranscript flattens entries into the text submitted for analysis,
// one "[time] author: message" line per entry
func FormatTranscript(entries []ChatEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Preview renders the first entries for display, followed by a count of the
// entries that were left out
func Preview(entries []ChatEntry, limit int) string {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	var sb strings.Builder
	for i, e := range entries {
		if i >= limit {
			break
		}
		sb.WriteString(e.String())
		sb.WriteString("\n\n")
	}

	if len(entries) > limit {
		sb.WriteString(fmt.Sprintf("... 还有 %d 条消息 ...", len(entries)-limit))
	}

	return sb.String()
}
