package usecase

import (
	"fmt"
	"os"
	"strings"

	"github.com/satriahrh/scorelink/domain"
)

// SongNamePlaceholder is replaced by the requested song name
const SongNamePlaceholder = "${songName}"

// PromptTemplate is the prompt text loaded once at startup
type PromptTemplate struct {
	text string
}

// NewPromptTemplate wraps an in-memory template
func NewPromptTemplate(text string) PromptTemplate {
	return PromptTemplate{text: text}
}

// LoadPromptTemplate reads the template file at path
func LoadPromptTemplate(path string) (PromptTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptTemplate{}, fmt.Errorf("%w: read prompt template %s: %w", domain.ErrConfiguration, path, err)
	}
	return NewPromptTemplate(string(data)), nil
}

// Build substitutes songName verbatim for every placeholder
func (t PromptTemplate) Build(songName string) string {
	return strings.ReplaceAll(t.text, SongNamePlaceholder, songName)
}

// String returns the raw template text
func (t PromptTemplate) String() string {
	return t.text
}
