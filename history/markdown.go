package history

import (
	"fmt"
	"io"
	"strings"
	"time"

	"chat-analyzer/chatlog"
)

// WriteMarkdown renders records as a Markdown document
func WriteMarkdown(w io.Writer, records []Record) error {
	var sb strings.Builder

	sb.WriteString("# 历史分析记录\n\n")
	if len(records) == 0 {
		sb.WriteString("*暂无记录*\n")
	}

	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, rec.Label()))
		sb.WriteString(rec.Result)
		sb.WriteString("\n\n")
		if i < len(records)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n*导出时间: %s*\n", time.Now().Format(chatlog.TimeLayout)))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}
