package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/model"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

// NewRouter wires the gateway HTTP surface.
func NewRouter(cfg *config.Config, chatHandler *ChatHandler) *gin.Engine {
	router := gin.New()

	router.Use(logger.GinLogger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorf("panic serving %s: %v", c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: fmt.Sprintf("Internal server error: %v", recovered),
		})
	}))
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.GET("/", chatHandler.Root)
	router.GET("/health", chatHandler.Health)
	router.GET("/models", chatHandler.ListModels)
	router.POST("/set_model", chatHandler.SetModel)
	router.POST("/chat", chatHandler.Chat)

	return router
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		ExposeHeaders:    c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           time.Duration(c.MaxAge) * time.Second,
	}

	// 允许任意来源时不能同时列出 "*"，改用 AllowOriginFunc 回显来源
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			cc.AllowOriginFunc = func(string) bool { return true }
			return cc
		}
	}
	cc.AllowOrigins = c.AllowedOrigins
	return cc
}
