package webui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/gateway"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/internal/storage"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

// Gateway is what the chat page needs from the inference gateway.
type Gateway interface {
	Chat(ctx context.Context, message string, history []model.Turn) (*model.ChatResponse, error)
	ListModels(ctx context.Context) ([]string, error)
	SetModel(ctx context.Context, name string) (string, error)
}

// Page serves the chat page. Every state change redirects back to GET / so
// the whole view is rendered again from the session.
type Page struct {
	store      storage.Storage
	gateway    Gateway
	title      string
	cookieName string
	ttl        time.Duration
}

func NewPage(cfg *config.Config, store storage.Storage, gw Gateway) *Page {
	return &Page{
		store:      store,
		gateway:    gw,
		title:      cfg.Client.Title,
		cookieName: cfg.Session.CookieName,
		ttl:        cfg.Session.TTL,
	}
}

type pageData struct {
	Title         string
	Turns         []model.Turn
	Flashes       []model.Flash
	Models        []string
	ModelsWarning string
}

func (p *Page) Index(c *gin.Context) {
	id := sessionID(c)

	sess, err := p.store.GetSession(id)
	if err != nil {
		logger.Errorf("render session %s: %v", id, err)
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}

	flashes, err := p.store.TakeFlashes(id)
	if err != nil {
		logger.Warnf("take flashes for %s: %v", id, err)
	}

	data := pageData{
		Title:   p.title,
		Turns:   sess.Turns,
		Flashes: flashes,
	}

	models, err := p.gateway.ListModels(c.Request.Context())
	switch {
	case err == nil:
		data.Models = models
	case isStatusError(err):
		data.ModelsWarning = "Could not fetch available models"
	default:
		logger.Warnf("list models: %v", err)
		data.ModelsWarning = "Backend not available"
	}

	c.HTML(http.StatusOK, "chat.html", data)
}

// Send records the user turn, relays it with the prior history and records
// the reply. A failed call leaves only the user turn and an error notice.
func (p *Page) Send(c *gin.Context) {
	id := sessionID(c)
	message := strings.TrimSpace(c.PostForm("message"))
	if message == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	sess, err := p.store.GetSession(id)
	if err != nil {
		logger.Errorf("send: load session %s: %v", id, err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	history := sess.Turns

	if err := p.store.AppendTurn(id, model.Turn{Role: model.RoleUser, Content: message}); err != nil {
		logger.Errorf("send: append user turn: %v", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	resp, err := p.gateway.Chat(c.Request.Context(), message, history)
	if err != nil {
		logger.Warnf("chat via gateway failed: %v", err)
		p.flash(id, model.FlashError, err.Error())
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := p.store.AppendTurn(id, model.Turn{Role: model.RoleAssistant, Content: resp.Response}); err != nil {
		logger.Errorf("send: append assistant turn: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Page) SelectModel(c *gin.Context) {
	id := sessionID(c)
	name := strings.TrimSpace(c.PostForm("model"))
	if name == "" {
		p.flash(id, model.FlashWarning, "No model selected")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := p.gateway.SetModel(c.Request.Context(), name); err != nil {
		logger.Warnf("set model via gateway failed: %v", err)
		p.flash(id, model.FlashError, err.Error())
	} else {
		p.flash(id, model.FlashSuccess, "Model updated to "+name)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Page) Clear(c *gin.Context) {
	id := sessionID(c)
	if err := p.store.ClearTurns(id); err != nil {
		logger.Errorf("clear session %s: %v", id, err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Page) flash(id, level, text string) {
	if err := p.store.AddFlash(id, model.Flash{Level: level, Text: text}); err != nil {
		logger.Warnf("add flash to %s: %v", id, err)
	}
}

func isStatusError(err error) bool {
	var se *gateway.StatusError
	return errors.As(err, &se)
}
