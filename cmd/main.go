package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/scorelink/adapters/llm"
	"github.com/satriahrh/scorelink/domain/repositories"
	"github.com/satriahrh/scorelink/internal/api"
	"github.com/satriahrh/scorelink/internal/config"
	"github.com/satriahrh/scorelink/internal/metrics"
	"github.com/satriahrh/scorelink/internal/websocket"
	"github.com/satriahrh/scorelink/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	template, err := usecase.LoadPromptTemplate(cfg.PromptPath)
	if err != nil {
		logger.Fatal("Failed to load prompt template", zap.Error(err))
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize adapters
	completer := newCompleter(cfg, logger)

	// Initialize usecase services
	scoreService := usecase.NewScoreService(template, completer, m, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(websocket.HubConfig{
		SendBuffer:     cfg.WSSendBuffer,
		MaxMessageSize: cfg.WSMaxMessageSize,
	}, m, logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	// Initialize API routes
	api.InitRoutes(e, api.Options{
		Scores:    scoreService,
		Hub:       hub,
		Gatherer:  reg,
		PublicDir: cfg.PublicDir,
		Logger:    logger,
	})

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", cfg.Addr),
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.LLMModel))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	stopHub()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	lvl, levelErr := zapcore.ParseLevel(level)
	if levelErr == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	if levelErr != nil {
		logger.Warn("Unknown log level, using info", zap.String("level", level))
	}
	return logger
}

func newCompleter(cfg *config.Config, logger *zap.Logger) repositories.TextCompleter {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return llm.NewGeminiCompleter(llm.GeminiConfig{
			BaseURL:   cfg.LLMEndpoint,
			Model:     cfg.LLMModel,
			APIKeyEnv: cfg.LLMAPIKeyEnv,
			Timeout:   cfg.LLMTimeout,
		}, logger)
	case config.ProviderMock:
		logger.Warn("Using mock completer")
		return llm.NewMockCompleter()
	default:
		return llm.NewOpenAICompleter(llm.OpenAIConfig{
			Endpoint:  cfg.LLMEndpoint,
			Model:     cfg.LLMModel,
			APIKeyEnv: cfg.LLMAPIKeyEnv,
			Timeout:   cfg.LLMTimeout,
		}, logger)
	}
}
