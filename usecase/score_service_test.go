package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/scorelink/domain"
	"github.com/satriahrh/scorelink/domain/entities"
	"github.com/satriahrh/scorelink/internal/metrics"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func newTestScoreService(t *testing.T, llm *stubCompleter) *ScoreService {
	return NewScoreService(
		NewPromptTemplate("Score for ${songName}"),
		llm,
		metrics.New(prometheus.NewRegistry()),
		zaptest.NewLogger(t),
	)
}

func TestScoreService_Generate(t *testing.T) {
	llm := &stubCompleter{response: `{"lines":["Do","Re","Mi"]}`}
	svc := newTestScoreService(t, llm)

	score, err := svc.Generate(context.Background(), entities.GenerationRequest{SongName: "Doremi"})
	require.NoError(t, err)
	assert.Equal(t, entities.Score{"Do", "Re", "Mi"}, score)
	assert.Equal(t, "Do\nRe\nMi", score.Text())
	assert.Equal(t, []string{"Score for Doremi"}, llm.prompts)
}

func TestScoreService_GenerateNoCache(t *testing.T) {
	llm := &stubCompleter{response: `{"lines":["a"]}`}
	svc := newTestScoreService(t, llm)

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(context.Background(), entities.GenerationRequest{SongName: "same"})
		require.NoError(t, err)
	}
	assert.Len(t, llm.prompts, 3)
}

func TestScoreService_GenerateCompletionError(t *testing.T) {
	llm := &stubCompleter{err: errors.New("rate limited")}
	svc := newTestScoreService(t, llm)

	score, err := svc.Generate(context.Background(), entities.GenerationRequest{SongName: "x"})
	require.Error(t, err)
	assert.Nil(t, score)
	assert.Equal(t, "rate limited", err.Error())
}

func TestScoreService_GenerateExtractionError(t *testing.T) {
	llm := &stubCompleter{response: `{"note":"hello"}`}
	svc := newTestScoreService(t, llm)

	_, err := svc.Generate(context.Background(), entities.GenerationRequest{SongName: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoArrayFound))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "configuration_error", Outcome(domain.NewError(domain.ErrConfiguration, "missing")))
	assert.Equal(t, "upstream_error", Outcome(domain.NewError(domain.ErrUpstream, "API error")))
	assert.Equal(t, "invalid_response_format", Outcome(domain.NewError(domain.ErrInvalidResponseFormat, "bad")))
	assert.Equal(t, "no_array_found", Outcome(domain.NewError(domain.ErrNoArrayFound, "none")))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
