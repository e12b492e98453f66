package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wandhekar/smart-chat-app/internal/config"
	"github.com/wandhekar/smart-chat-app/internal/engine"
	"github.com/wandhekar/smart-chat-app/internal/handler"
	"github.com/wandhekar/smart-chat-app/internal/service"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	models, err := service.NewModelSelector(cfg.Engine.DefaultModel)
	if err != nil {
		logger.Fatalf("Invalid default model: %v", err)
	}

	// 初始化服务
	chatService := service.NewChatService(cfg, engine.NewClient(cfg.Engine), models)
	chatHandler := handler.NewChatHandler(chatService)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg, chatHandler)

	server := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Infof("gateway listening on %s (engine %s, model %s)", server.Addr, cfg.Engine.BaseURL, models.Current())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("gateway failed: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("gateway shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("gateway shutdown failed: %v", err)
	}
	logger.Info("gateway stopped")
}
