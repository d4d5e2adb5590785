package repositories

import "context"

// TextCompleter abstracts any text-generation provider
type TextCompleter interface {
	// Complete sends the prompt as a single user message and returns the raw
	// text of the first completion
	Complete(ctx context.Context, prompt string) (string, error)
}

