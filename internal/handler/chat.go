package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wandhekar/smart-chat-app/internal/engine"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// errorMessage keeps engine transport and status errors verbatim and wraps
// anything else, including unreadable engine replies, as an internal error.
func errorMessage(err error) string {
	var engErr *engine.Error
	if errors.As(err, &engErr) && engErr.Kind != engine.KindDecode {
		return engErr.Error()
	}
	return "Internal server error: " + err.Error()
}

func (h *ChatHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.MessageResponse{Message: "Smart Chat Backend is running!"})
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.Health(c.Request.Context()))
}

func (h *ChatHandler) ListModels(c *gin.Context) {
	names, err := h.chatService.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, model.ModelsResponse{Models: names})
}

func (h *ChatHandler) SetModel(c *gin.Context) {
	var req model.SetModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	msg, err := h.chatService.SetModel(req.Model)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: msg})
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, resp)
}
