package analyzer

import "fmt"

const (
	// DefaultSystemPrompt is used when the user has not configured one
	DefaultSystemPrompt = "你是一个专业的聊天记录分析助手。请分析以下聊天记录，提取关键信息，并生成简洁的摘要。"

	// ImproveSystemPrompt is the fixed system prompt of a revision request
	ImproveSystemPrompt = "你是一个专业的聊天记录分析助手。请根据用户的反馈改进你的分析。"
)

// AnalyzeUserMessage wraps a transcript into the user turn of a summary request
func AnalyzeUserMessage(transcript string) string {
	return "请分析以下聊天记录并提取关键信息：\n\n" + transcript
}

// ImproveUserMessage builds the user turn of a revision request
func ImproveUserMessage(previous, feedback string) string {
	return fmt.Sprintf("原始分析：\n\n%s\n\n用户反馈：\n\n%s\n\n请根据反馈改进分析结果。", previous, feedback)
}
