package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/entities"
	"github.com/satriahrh/scorelink/domain/repositories"
	"github.com/satriahrh/scorelink/internal/metrics"
)

// ScoreState is a step of one score generation
type ScoreState string

const (
	ScoreStateReceived            ScoreState = "received"
	ScoreStatePromptBuilt         ScoreState = "prompt_built"
	ScoreStateCompletionRequested ScoreState = "completion_requested"
	ScoreStateCompletionFailed    ScoreState = "completion_failed"
	ScoreStateCompletionSucceeded ScoreState = "completion_succeeded"
	ScoreStateExtractionFailed    ScoreState = "extraction_failed"
	ScoreStateExtractionSucceeded ScoreState = "extraction_succeeded"
)

// ScoreService turns a song name into score lines
type ScoreService struct {
	template PromptTemplate
	llm      repositories.TextCompleter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewScoreService creates a new score service
func NewScoreService(template PromptTemplate, llm repositories.TextCompleter, m *metrics.Metrics, logger *zap.Logger) *ScoreService {
	return &ScoreService{
		template: template,
		llm:      llm,
		metrics:  m,
		logger:   logger,
	}
}

// Generate runs one prompt → completion → extraction pass. Every call makes
// exactly one completion request; nothing is cached.
func (s *ScoreService) Generate(ctx context.Context, req entities.GenerationRequest) (entities.Score, error) {
	start := time.Now()
	log := s.logger.With(zap.String("songName", req.SongName))
	log.Debug("Score request", zap.String("state", string(ScoreStateReceived)))

	prompt := s.template.Build(req.SongName)
	log.Debug("Score request",
		zap.String("state", string(ScoreStatePromptBuilt)),
		zap.Int("promptLength", len(prompt)))

	log.Debug("Score request", zap.String("state", string(ScoreStateCompletionRequested)))
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		log.Error("Score request failed",
			zap.String("state", string(ScoreStateCompletionFailed)),
			zap.Error(err))
		s.metrics.ObserveScore(Outcome(err), time.Since(start))
		return nil, err
	}
	log.Debug("Score request",
		zap.String("state", string(ScoreStateCompletionSucceeded)),
		zap.Int("responseLength", len(raw)))

	score, err := ExtractScore(raw)
	if err != nil {
		log.Error("Score request failed",
			zap.String("state", string(ScoreStateExtractionFailed)),
			zap.String("response", raw),
			zap.Error(err))
		s.metrics.ObserveScore(Outcome(err), time.Since(start))
		return nil, err
	}

	log.Info("Score generated",
		zap.String("state", string(ScoreStateExtractionSucceeded)),
		zap.Int("lines", len(score)),
		zap.Duration("elapsed", time.Since(start)))
	s.metrics.ObserveScore(Outcome(nil), time.Since(start))
	return score, nil
}

// Outcome maps an error to a metrics label
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	case errors.Is(err, domain.ErrInvalidResponseFormat):
		return "invalid_response_format"
	case errors.Is(err, domain.ErrNoArrayFound):
		return "no_array_found"
	default:
		return "error"
	}
}
