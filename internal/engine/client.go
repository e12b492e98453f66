package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/utils"
)

// Kind classifies a failure talking to the inference engine.
type Kind int

const (
	KindUnavailable Kind = iota // connection refused, DNS, timeout
	KindStatus                  // engine answered with a status other than 200
	KindDecode                  // engine answered 200 with a body we cannot read
)

type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsUnavailable reports whether err is a connection-level engine failure.
func IsUnavailable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnavailable
}

func unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "Ollama connection error", Cause: err}
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Model    string  `json:"model"`
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

type ModelInfo struct {
	Name       *string   `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// Client talks to an Ollama-compatible inference engine.
type Client struct {
	rest *resty.Client
	cfg  config.EngineConfig
}

func NewClient(cfg config.EngineConfig) *Client {
	// 客户端超时取最长的操作超时，单个请求再用 context 收紧
	upper := cfg.GenerateTimeout
	for _, d := range []time.Duration{cfg.HealthTimeout, cfg.ListTimeout} {
		if d > upper {
			upper = d
		}
	}

	return &Client{
		rest: utils.NewRESTClient(cfg.BaseURL, upper),
		cfg:  cfg,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Ping queries the model listing endpoint with the health timeout and returns
// the status code the engine answered with. An error means no answer at all.
func (c *Client) Ping(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	resp, err := c.rest.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return 0, unavailable(err)
	}
	return resp.StatusCode(), nil
}

// ListModels returns model names in the order the engine reports them.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.ListTimeout)
	defer cancel()

	resp, err := c.rest.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, &Error{
			Kind:       KindStatus,
			Message:    fmt.Sprintf("Could not fetch models from Ollama (status %d)", resp.StatusCode()),
			StatusCode: resp.StatusCode(),
		}
	}

	var result ListModelsResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "invalid model list from Ollama", Cause: err}
	}

	names := make([]string, 0, len(result.Models))
	for i, m := range result.Models {
		if m.Name == nil {
			return nil, &Error{Kind: KindDecode, Message: fmt.Sprintf("model entry %d from Ollama has no name", i)}
		}
		names = append(names, *m.Name)
	}
	return names, nil
}

// Generate runs a single non-streaming completion and returns the raw text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, c.cfg.GenerateTimeout)
	defer cancel()

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(GenerateRequest{Model: model, Prompt: prompt, Stream: false}).
		Post("/api/generate")
	if err != nil {
		return "", unavailable(err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &Error{
			Kind:       KindStatus,
			Message:    fmt.Sprintf("Ollama API error: %d", resp.StatusCode()),
			StatusCode: resp.StatusCode(),
		}
	}

	var result GenerateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", &Error{Kind: KindDecode, Message: "invalid generate response from Ollama", Cause: err}
	}
	if result.Response == nil {
		return "", &Error{Kind: KindDecode, Message: `generate response from Ollama has no "response" field`}
	}
	return *result.Response, nil
}
