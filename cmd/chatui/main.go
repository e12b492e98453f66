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
	"github.com/wandhekar/smart-chat-app/internal/gateway"
	"github.com/wandhekar/smart-chat-app/internal/storage"
	"github.com/wandhekar/smart-chat-app/internal/webui"
	"github.com/wandhekar/smart-chat-app/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	store := storage.NewMemoryStorage()
	if err := store.Init(); err != nil {
		logger.Fatalf("Failed to init session storage: %v", err)
	}
	defer store.Close()

	page := webui.NewPage(cfg, store, gateway.NewClient(cfg.Client))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go page.RunCleanup(ctx, cfg.Session.CleanupInterval)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:    cfg.Client.Addr(),
		Handler: webui.NewRouter(page),
		// 聊天请求会阻塞到网关返回
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Client.ChatTimeout + cfg.Client.ModelsTimeout + 5*time.Second,
	}

	go func() {
		logger.Infof("chat ui listening on %s (gateway %s)", server.Addr, cfg.Client.GatewayURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("chat ui failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("chat ui shutting down...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("chat ui shutdown failed: %v", err)
	}
	logger.Info("chat ui stopped")
}
