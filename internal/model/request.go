package model

// Turn is one message of a conversation, tagged with its speaker.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

type SetModelRequest struct {
	Model string `json:"model" binding:"required"`
}
