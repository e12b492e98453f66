package webui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/gateway"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/internal/storage"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type chatCall struct {
	message string
	history []model.Turn
}

type fakeGateway struct {
	mu       sync.Mutex
	calls    []chatCall
	reply    string
	chatErr  error
	models   []string
	listErr  error
	setModel string
	setErr   error
}

func (f *fakeGateway) Chat(ctx context.Context, message string, history []model.Turn) (*model.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chatCall{message: message, history: append([]model.Turn(nil), history...)})
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &model.ChatResponse{Response: f.reply, Model: "llama2"}, nil
}

func (f *fakeGateway) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.listErr
}

func (f *fakeGateway) SetModel(ctx context.Context, name string) (string, error) {
	f.setModel = name
	if f.setErr != nil {
		return "", f.setErr
	}
	return "Model set to " + name, nil
}

// browser keeps the session cookie between requests.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return w
}

func (b *browser) send(message string) {
	w := b.do(http.MethodPost, "/send", url.Values{"message": {message}})
	require.Equal(b.t, http.StatusSeeOther, w.Code)
}

func (b *browser) sessionID() string {
	require.NotEmpty(b.t, b.cookies)
	return b.cookies[0].Value
}

func setup(t *testing.T, gw *fakeGateway) (*browser, *storage.MemoryStorage) {
	t.Helper()

	cfg := &config.Config{
		Client:  config.ClientConfig{Title: "Smart Chat App"},
		Session: config.SessionConfig{CookieName: "chat_session", TTL: time.Hour},
	}
	store := storage.NewMemoryStorage()
	page := NewPage(cfg, store, gw)

	b := &browser{t: t, handler: NewRouter(page)}
	w := b.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return b, store
}

func turns(t *testing.T, store storage.Storage, id string) []model.Turn {
	t.Helper()
	s, err := store.GetSession(id)
	require.NoError(t, err)
	return s.Turns
}

func TestIndex_NewSessionRendersEmpty(t *testing.T) {
	b, store := setup(t, &fakeGateway{models: []string{"llama2", "mistral"}})

	w := b.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Smart Chat App")
	assert.Contains(t, body, `<option value="mistral">mistral</option>`)
	assert.NotContains(t, body, `class="turn user"><span`)
	assert.Empty(t, turns(t, store, b.sessionID()))
}

func TestSend_AppendsUserAndAssistantTurns(t *testing.T) {
	gw := &fakeGateway{reply: "I am fine", models: []string{"llama2"}}
	b, store := setup(t, gw)

	b.send("hi")
	b.send("how are you?")

	assert.Equal(t, []model.Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "I am fine"},
		{Role: "user", Content: "how are you?"},
		{Role: "assistant", Content: "I am fine"},
	}, turns(t, store, b.sessionID()))

	require.Len(t, gw.calls, 2)
	assert.Empty(t, gw.calls[0].history)
	assert.Equal(t, "how are you?", gw.calls[1].message)
	assert.Equal(t, []model.Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "I am fine"},
	}, gw.calls[1].history)

	body := b.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "how are you?")
	assert.Contains(t, body, "I am fine")
}

func TestSend_GatewayFailureKeepsOnlyUserTurn(t *testing.T) {
	gw := &fakeGateway{
		chatErr: &gateway.ConnError{Cause: errors.New("dial tcp: connection refused")},
		models:  []string{"llama2"},
	}
	b, store := setup(t, gw)

	b.send("hello?")

	assert.Equal(t, []model.Turn{{Role: "user", Content: "hello?"}}, turns(t, store, b.sessionID()))

	body := b.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, `class="flash error"`)
	assert.Contains(t, body, "Connection error: dial tcp: connection refused")

	// flashes are shown once
	body = b.do(http.MethodGet, "/", nil).Body.String()
	assert.NotContains(t, body, "Connection error")
}

func TestSend_StatusErrorMessage(t *testing.T) {
	gw := &fakeGateway{chatErr: &gateway.StatusError{StatusCode: 500, Body: `{"error":"Ollama API error: 404"}`}}
	b, _ := setup(t, gw)

	b.send("hello?")

	body := b.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "Error: 500 - ")
}

func TestSend_IgnoresBlankMessage(t *testing.T) {
	gw := &fakeGateway{reply: "x"}
	b, store := setup(t, gw)

	b.send("   ")

	assert.Empty(t, gw.calls)
	assert.Empty(t, turns(t, store, b.sessionID()))
}

func TestClear_ResetsHistory(t *testing.T) {
	gw := &fakeGateway{reply: "ok", models: []string{"llama2"}}
	b, store := setup(t, gw)

	b.send("first")
	w := b.do(http.MethodPost, "/clear", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)

	assert.Empty(t, turns(t, store, b.sessionID()))
	assert.NotContains(t, b.do(http.MethodGet, "/", nil).Body.String(), "first")

	b.send("second")
	require.Len(t, gw.calls, 2)
	assert.Empty(t, gw.calls[1].history)
}

func TestIndex_ModelsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gateway error status", &gateway.StatusError{StatusCode: 500}, "Could not fetch available models"},
		{"gateway down", &gateway.ConnError{Cause: errors.New("refused")}, "Backend not available"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := setup(t, &fakeGateway{listErr: tc.err})

			body := b.do(http.MethodGet, "/", nil).Body.String()

			assert.Contains(t, body, tc.want)
			assert.Contains(t, body, "<select disabled>")
			assert.NotContains(t, body, "Update Model")
		})
	}
}

func TestSelectModel(t *testing.T) {
	gw := &fakeGateway{models: []string{"llama2", "mistral"}}
	b, _ := setup(t, gw)

	w := b.do(http.MethodPost, "/model", url.Values{"model": {"mistral"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "mistral", gw.setModel)

	body := b.do(http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, body, "Model updated to mistral")
}

func TestSessionsAreIsolated(t *testing.T) {
	gw := &fakeGateway{reply: "ok"}
	cfg := &config.Config{Session: config.SessionConfig{CookieName: "chat_session", TTL: time.Hour}}
	store := storage.NewMemoryStorage()
	router := NewRouter(NewPage(cfg, store, gw))

	a := &browser{t: t, handler: router}
	b := &browser{t: t, handler: router}
	a.do(http.MethodGet, "/", nil)
	b.do(http.MethodGet, "/", nil)

	a.send("from a")

	assert.NotEqual(t, a.sessionID(), b.sessionID())
	assert.Len(t, turns(t, store, a.sessionID()), 2)
	assert.Empty(t, turns(t, store, b.sessionID()))
}

func TestExpiredSessionStartsFresh(t *testing.T) {
	gw := &fakeGateway{reply: "ok"}
	b, store := setup(t, gw)
	b.send("hi")
	old := b.sessionID()

	_, err := store.DeleteExpired(time.Now().Add(time.Hour))
	require.NoError(t, err)
	b.do(http.MethodGet, "/", nil)

	assert.NotEqual(t, old, b.sessionID())
	assert.Empty(t, turns(t, store, b.sessionID()))
}

func TestCleanupOnce(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.CreateSession(&model.Session{ID: "s1"}))
	require.NoError(t, store.CreateSession(&model.Session{ID: "s2"}))

	page := NewPage(&config.Config{Session: config.SessionConfig{TTL: time.Hour}}, store, &fakeGateway{})
	removed, active := page.cleanupOnce()
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, active)

	page.ttl = time.Nanosecond
	time.Sleep(time.Millisecond)
	removed, active = page.cleanupOnce()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, active)

	_, err := store.GetSession("s1")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
