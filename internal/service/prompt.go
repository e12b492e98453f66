package service

import (
	"strings"

	"github.com/wandhekar/smart-chat-app/internal/model"
)

// BuildPrompt flattens the last maxTurns history entries plus the new message
// into a single completion prompt:
//
//	Human: <user turn>
//	Assistant: <any other turn>
//	Human: <message>
//	Assistant:
func BuildPrompt(history []model.Turn, message string, maxTurns int) string {
	if maxTurns < 0 {
		maxTurns = 0
	}
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}

	var b strings.Builder
	for _, turn := range history {
		if turn.Role == model.RoleUser {
			b.WriteString("Human: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(message)
	b.WriteString("\nAssistant:")

	return b.String()
}
