package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/engine"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

// Engine is the subset of the inference engine the gateway relies on.
type Engine interface {
	Ping(ctx context.Context) (int, error)
	ListModels(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type ChatService struct {
	engine          Engine
	models          *ModelSelector
	maxHistoryTurns int
}

func NewChatService(cfg *config.Config, eng Engine, models *ModelSelector) *ChatService {
	return &ChatService{
		engine:          eng,
		models:          models,
		maxHistoryTurns: cfg.Chat.MaxHistoryTurns,
	}
}

// Health never fails: any engine problem is folded into the report.
func (s *ChatService) Health(ctx context.Context) model.HealthResponse {
	status, err := s.engine.Ping(ctx)
	if err != nil {
		logger.Warnf("health check: engine unreachable: %v", err)
		return model.HealthResponse{
			Status: model.StatusUnhealthy,
			Error:  err.Error(),
		}
	}

	engineStatus := model.StatusHealthy
	if status != http.StatusOK {
		engineStatus = model.StatusUnhealthy
	}

	return model.HealthResponse{
		Status:       model.StatusHealthy,
		EngineStatus: engineStatus,
		CurrentModel: s.models.Current(),
	}
}

func (s *ChatService) ListModels(ctx context.Context) ([]string, error) {
	names, err := s.engine.ListModels(ctx)
	if err != nil {
		logger.Warnf("list models failed: %v", err)
		return nil, err
	}
	return names, nil
}

func (s *ChatService) CurrentModel() string {
	return s.models.Current()
}

func (s *ChatService) SetModel(name string) (string, error) {
	prev, err := s.models.Set(name)
	if err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"previous": prev,
		"current":  name,
	}).Info("model changed")

	return fmt.Sprintf("Model set to %s", name), nil
}

// Chat relays one user message with its recent history to the engine. The
// model is read once so the reply reports the model that produced it.
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	current := s.models.Current()
	prompt := BuildPrompt(req.History, req.Message, s.maxHistoryTurns)

	logger.Debugf("chat: model=%s history=%d prompt_len=%d", current, len(req.History), len(prompt))

	text, err := s.engine.Generate(ctx, current, prompt)
	if err != nil {
		if engine.IsUnavailable(err) {
			logger.Warnf("chat: engine unreachable: %v", err)
		} else {
			logger.Errorf("chat: generate with model %s failed: %v", current, err)
		}
		return nil, err
	}

	return &model.ChatResponse{
		Response: strings.TrimSpace(text),
		Model:    current,
	}, nil
}
