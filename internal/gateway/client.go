package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/internal/utils"
)

// StatusError means the gateway answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.StatusCode, e.Body)
}

// ConnError means the gateway could not be reached or did not answer in time.
type ConnError struct {
	Cause error
}

func (e *ConnError) Error() string {
	return "Connection error: " + e.Cause.Error()
}

func (e *ConnError) Unwrap() error {
	return e.Cause
}

// Client calls the inference gateway on behalf of the chat page.
type Client struct {
	rest          *resty.Client
	chatTimeout   time.Duration
	modelsTimeout time.Duration
}

func NewClient(cfg config.ClientConfig) *Client {
	upper := cfg.ChatTimeout
	if cfg.ModelsTimeout > upper {
		upper = cfg.ModelsTimeout
	}

	return &Client{
		rest:          utils.NewRESTClient(cfg.GatewayURL, upper),
		chatTimeout:   cfg.ChatTimeout,
		modelsTimeout: cfg.ModelsTimeout,
	}
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body, out interface{}) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &ConnError{Cause: err}
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// Chat sends message with the prior history, which must not include message.
func (c *Client) Chat(ctx context.Context, message string, history []model.Turn) (*model.ChatResponse, error) {
	if history == nil {
		history = []model.Turn{}
	}

	var out model.ChatResponse
	err := c.do(ctx, c.chatTimeout, resty.MethodPost, "/chat", model.ChatRequest{
		Message: message,
		History: history,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var out model.ModelsResponse
	if err := c.do(ctx, c.modelsTimeout, resty.MethodGet, "/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

func (c *Client) SetModel(ctx context.Context, name string) (string, error) {
	var out model.MessageResponse
	err := c.do(ctx, c.modelsTimeout, resty.MethodPost, "/set_model", model.SetModelRequest{Model: name}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}
