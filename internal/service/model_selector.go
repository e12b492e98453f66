package service

import (
	"errors"
	"strings"
	"sync"
)

var ErrEmptyModel = errors.New("model name must not be empty")

// ModelSelector holds the single model every chat request on this process
// uses. Writes are last-write-wins; a reader sees either the old or the new
// name, never a torn value.
type ModelSelector struct {
	mu      sync.RWMutex
	current string
}

func NewModelSelector(initial string) (*ModelSelector, error) {
	if strings.TrimSpace(initial) == "" {
		return nil, ErrEmptyModel
	}
	return &ModelSelector{current: initial}, nil
}

func (m *ModelSelector) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Set replaces the selected model and returns the previous one. The name is
// not checked against the engine's model list.
func (m *ModelSelector) Set(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyModel
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.current
	m.current = name
	return prev, nil
}
