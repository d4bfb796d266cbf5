package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

// Generator streams an answer grounded in context. Fragments arrive in order
// as the model produces them; a transport failure is yielded once, last.
// Stopping the range early closes the underlying stream.
type Generator interface {
	Generate(ctx context.Context, contextText string, question string) iter.Seq2[string, error]
	ModelName() string
}

// UserPrompt is the single user message sent with the system prompt.
func UserPrompt(contextText, question string) string {
	return fmt.Sprintf("Context: %s, Question: %s", contextText, question)
}

// Collect drains a stream into one string. On error the text produced so far
// is returned with it.
func Collect(stream iter.Seq2[string, error]) (string, error) {
	var b strings.Builder
	for fragment, err := range stream {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(fragment)
	}
	return b.String(), nil
}

// AsGenerationError tags err as a generation failure, keeping context
// cancellation visible to errors.Is.
func AsGenerationError(err error) error {
	if errors.Is(err, commonModels.ErrGeneration) {
		return err
	}
	return fmt.Errorf("%w: %w", commonModels.ErrGeneration, err)
}
