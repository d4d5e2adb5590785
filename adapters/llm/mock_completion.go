package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/satriahrh/scorelink/domain/repositories"
)

// MockCompleter is a placeholder TextCompleter for running without a
// credential. It answers with a short fixed score wrapped in prose, the way
// real models often do.
type MockCompleter struct{}

// NewMockCompleter creates a new mock completer
func NewMockCompleter() repositories.TextCompleter {
	return &MockCompleter{}
}

// Complete implements repositories.TextCompleter
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	score, err := json.Marshal(map[string][]string{
		"score": {"C4 q", "D4 q", "E4 q", "C4 q", "E4 h", "G4 h"},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Here is the score:\n```json\n%s\n```", score), nil
}
