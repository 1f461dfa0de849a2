package chatlog

import (
	"errors"
	"strings"
	"time"
)

// ErrNothingParsed is returned when the input produced no chat entries
var ErrNothingParsed = errors.New("no chat entries could be parsed")

// ParseText parses pasted chat text, one entry per non-empty line.
//
// Recognized line forms, tried in order:
//
//	[2023-01-01 12:00:00] 张三: 你好    timestamp, author and message
//	张三: 你好                          author and message, timestamp from now
//	anything else                       message only, author UnknownAuthor
//
// The timestamp of the last two forms is the parse time, not the chat time.
// If now is nil, time.Now is used.
func ParseText(text string, now func() time.Time) ([]ChatEntry, error) {
	if now == nil {
		now = time.Now
	}

	var entries []ChatEntry
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		entries = append(entries, parseLine(line, now))
	}

	if len(entries) == 0 {
		return nil, ErrNothingParsed
	}
	return entries, nil
}

// parseLine parses a single trimmed, non-empty line
func parseLine(line string, now func() time.Time) ChatEntry {
	if entry, ok := parseBracketed(line); ok {
		return entry
	}

	stamp := now().Format(TimeLayout)
	if author, message, ok := splitAuthor(line); ok {
		return ChatEntry{Time: stamp, Author: author, Message: message}
	}

	return ChatEntry{Time: stamp, Author: UnknownAuthor, Message: line}
}

// parseBracketed handles "[time] author: message". A line without a closing
// bracket, or without a colon after it, is not in this form.
func parseBracketed(line string) (ChatEntry, bool) {
	if !strings.HasPrefix(line, "[") {
		return ChatEntry{}, false
	}

	end := strings.IndexByte(line, ']')
	if end < 0 {
		return ChatEntry{}, false
	}

	author, message, ok := splitAuthor(strings.TrimSpace(line[end+1:]))
	if !ok {
		return ChatEntry{}, false
	}

	return ChatEntry{Time: line[1:end], Author: author, Message: message}, true
}

// splitAuthor splits on the first colon
func splitAuthor(s string) (author, message string, ok bool) {
	author, message, ok = strings.Cut(s, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(author), strings.TrimSpace(message), true
}
