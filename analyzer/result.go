package analyzer

import "chat-analyzer/history"

// Result is the outcome of one summary or revision call. Exactly one of
// Content and Err is meaningful.
type Result struct {
	Kind    history.Kind
	Content string
	Err     error
}

// OK reports whether the call succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns the content on success and a readable failure message
// otherwise. This is what gets displayed and stored in history.
func (r Result) Text() string {
	if r.Err == nil {
		return r.Content
	}
	if r.Kind == history.KindImprovement {
		return "改进分析失败: " + r.Err.Error()
	}
	return "分析失败: " + r.Err.Error()
}
