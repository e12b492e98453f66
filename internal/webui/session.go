package webui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/internal/storage"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

const sessionKey = "session_id"

// sessionMiddleware binds each request to a stored session, creating an empty
// one when the cookie is missing or the session has expired.
func (p *Page) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(p.cookieName)
		if err == nil && id != "" {
			if _, err := p.store.GetSession(id); err == nil {
				c.Set(sessionKey, id)
				c.Next()
				return
			} else if !errors.Is(err, storage.ErrSessionNotFound) {
				logger.Errorf("load session %s: %v", id, err)
			}
		}

		id = uuid.New().String()
		if err := p.store.CreateSession(&model.Session{ID: id}); err != nil {
			logger.Errorf("create session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(p.cookieName, id, int(p.ttl/time.Second), "/", "", false, true)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// RunCleanup deletes sessions idle for longer than the TTL until ctx is done.
func (p *Page) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 || p.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanupOnce()
		case <-ctx.Done():
			return
		}
	}
}

// cleanupOnce sweeps expired sessions and reports how many were removed and
// how many remain.
func (p *Page) cleanupOnce() (removed, active int) {
	expired, err := p.store.DeleteExpired(time.Now().Add(-p.ttl))
	if err != nil {
		logger.Errorf("cleanup expired sessions: %v", err)
		return 0, 0
	}

	sessions, err := p.store.ListSessions()
	if err != nil {
		logger.Errorf("list sessions: %v", err)
		return len(expired), 0
	}

	if len(expired) > 0 {
		logger.WithFields(logrus.Fields{
			"removed": len(expired),
			"active":  len(sessions),
		}).Info("cleaned up expired sessions")
	}
	return len(expired), len(sessions)
}
