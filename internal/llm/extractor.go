package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NoPasswordSentinel is the reply the model is told to give when the
// comment contains no password.
const NoPasswordSentinel = "NO_PASSWORD_FOUND"

// ErrRequest wraps every failure talking to the model.
var ErrRequest = errors.New("gemini request failed")

const promptTemplate = "You are given a text extracted from the comment section of a compressed file. " +
	"The comment may contain a password. " +
	"Carefully read the text and identify the password exactly as it appears. " +
	"If no password is present, say '" + NoPasswordSentinel + "'. " +
	"Output only the password without any extra words or formatting." +
	"\n\nText:\n---\n%s\n---"

// Generator produces a text reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Extractor turns archive comments into password candidates.
type Extractor struct {
	gen    Generator
	model  string
	logger *zap.Logger
}

// NewExtractor creates an Extractor that queries model through gen.
//
// A nil logger is replaced with a no-op logger.
func NewExtractor(gen Generator, model string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{gen: gen, model: model, logger: logger}
}

// BuildPrompt returns the instruction sent to the model, with comment
// embedded verbatim.
func BuildPrompt(comment string) string {
	return fmt.Sprintf(promptTemplate, comment)
}

// ExtractPassword returns the password the model found in comment.
//
// An empty or blank comment returns "" without contacting the model. The
// reply is trimmed of surrounding whitespace; an empty reply or the
// NO_PASSWORD_FOUND sentinel returns "". Request failures are wrapped in
// ErrRequest. The candidate is not checked against the archive.
func (e *Extractor) ExtractPassword(ctx context.Context, comment string) (string, error) {
	if strings.TrimSpace(comment) == "" {
		return "", nil
	}

	e.logger.Debug("querying model for password",
		zap.String("model", e.model),
		zap.Int("comment_bytes", len(comment)))

	reply, err := e.gen.Generate(ctx, e.model, BuildPrompt(comment))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}

	candidate := strings.TrimSpace(reply)
	if candidate == NoPasswordSentinel {
		e.logger.Debug("model reported no password")
		return "", nil
	}
	return candidate, nil
}
