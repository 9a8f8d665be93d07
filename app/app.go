package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	_ "regreen-notification-service/ddd/adapter/http"
	"regreen-notification-service/ddd/infrastructure/memory"
	"regreen-notification-service/pkg/config"
	"regreen-notification-service/pkg/logger"
	"regreen-notification-service/pkg/manager"
	"regreen-notification-service/pkg/middleware"
	"regreen-notification-service/pkg/sse"
)

const serviceName = "regreen-notification-service"

// Run is the entrypoint of the notification service.
func Run() {
	fmt.Println("[STARTUP] Starting notification service...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("[WARN] Failed to load .env: %v\n", err)
	}

	configFlag := flag.String("config", "", "path to the YAML config file")
	flag.Parse()
	cfgPath := resolveConfigPath(*configFlag)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	fmt.Printf("[STARTUP] Config file loaded: %s\n", cfgPath)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Notification service starting service=%s mode=%s", serviceName, cfg.Server.Mode)

	if err := config.Watch(cfgPath, func(next *config.Config) {
		logService.SetLevel(next.Log.Level)
		logger.Infof("Config reloaded log_level=%s", next.Log.Level)
	}); err != nil {
		logger.Warnf("Config hot reload disabled error=%v", err)
	}

	deps := &manager.Dependencies{
		Config:        cfg,
		Registry:      sse.NewRegistry(),
		Subscriptions: memory.NewSubscriptionRepository(),
	}

	router := newRouter(deps)

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// Streams stay open indefinitely, so the write timeout is normally 0.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Shutdown waits for handlers to return, and stream handlers only return
	// once their stream is closed.
	server.RegisterOnShutdown(deps.Registry.CloseAll)

	go func() {
		logger.Infof("HTTP server starting addr=%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start HTTP server error=%v", err)
		}
	}()
	logger.Infof("HTTP server started health_url=%s", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}

	logger.Infof("Server exited safely")
	logService.Close()
}

func newRouter(deps *manager.Dependencies) *gin.Engine {
	if deps.Config.Server.Mode != "" {
		gin.SetMode(deps.Config.Server.Mode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestContextMiddleware(),
		middleware.RequestLogMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   serviceName,
			"timestamp": time.Now().Unix(),
		})
	})

	manager.RegisterAllRoutes(router, deps)
	return router
}

// resolveConfigPath determines which config file to use. The --config flag
// wins over CONFIG_PATH, which wins over CONFIG_ENV.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if env := os.Getenv("CONFIG_ENV"); env != "" {
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
	return "configs/config.dev.yaml"
}
