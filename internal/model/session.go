package model

import "time"

const (
	FlashError   = "error"
	FlashWarning = "warning"
	FlashSuccess = "success"
)

// Flash is a one-shot notice shown on the next page render.
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Session is one browser session of the chat page.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Turns = append([]Turn(nil), s.Turns...)
	c.Flashes = append([]Flash(nil), s.Flashes...)
	return &c
}
