package storage

import (
	"time"

	"github.com/wandhekar/smart-chat-app/internal/model"
)

// Storage holds chat page sessions. Returned sessions are copies; mutate
// through the store.
type Storage interface {
	// 会话管理
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	ListSessions() ([]*model.Session, error)
	DeleteExpired(cutoff time.Time) ([]string, error)

	// 对话历史
	AppendTurn(sessionID string, turn model.Turn) error
	ClearTurns(sessionID string) error

	// 一次性提示
	AddFlash(sessionID string, flash model.Flash) error
	TakeFlashes(sessionID string) ([]model.Flash, error)

	Init() error
	Close() error
}
