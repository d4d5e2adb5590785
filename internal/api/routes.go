package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/scorelink/domain/entities"
	"github.com/satriahrh/scorelink/internal/websocket"
)

// ScoreGenerator produces a score for one request
type ScoreGenerator interface {
	Generate(ctx context.Context, req entities.GenerationRequest) (entities.Score, error)
}

// Options carries the dependencies of the HTTP surface
type Options struct {
	Scores    ScoreGenerator
	Hub       *websocket.Hub
	Gatherer  prometheus.Gatherer
	PublicDir string
	Logger    *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, opts Options) {
	logger := opts.Logger

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:      "ok",
			Service:     "scorelink-server",
			Connections: opts.Hub.ConnectionCount(),
		})
	})

	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	e.POST("/api/generate-score", func(c echo.Context) error {
		return generateScore(c, opts.Scores, logger)
	})

	// Sensor relay
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(opts.Hub, c)
	})

	// Static pages
	if opts.PublicDir != "" {
		e.File("/", filepath.Join(opts.PublicDir, "instrument.html"))
		e.File("/smart", filepath.Join(opts.PublicDir, "smart.html"))
		e.Static("/", opts.PublicDir)
	}
}

func generateScore(c echo.Context, scores ScoreGenerator, logger *zap.Logger) error {
	var req GenerateScoreRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		logger.Warn("Failed to bind score request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
		})
	}

	// a started generation runs to completion even if the caller goes away
	ctx := context.WithoutCancel(c.Request().Context())

	score, err := scores.Generate(ctx, entities.GenerationRequest{SongName: req.songName()})
	if err != nil {
		logger.Error("API Error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, GenerateScoreResponse{
		Text: score.Text(),
	})
}
