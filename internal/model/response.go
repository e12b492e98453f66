package model

type ChatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is either a full report or {status:"unhealthy", error}.
type HealthResponse struct {
	Status       string `json:"status"`
	EngineStatus string `json:"engine_status,omitempty"`
	CurrentModel string `json:"current_model,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
