package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"compliance-rag/internal/llmservice"
	"compliance-rag/internal/models"
)

// Verdict is the closed set of scope-classification outcomes.
type Verdict int

const (
	OutOfScope Verdict = iota
	Meta
	Domain
)

func (v Verdict) String() string {
	switch v {
	case OutOfScope:
		return "out_of_scope"
	case Meta:
		return "meta"
	case Domain:
		return "domain"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ErrUnknownVerdict is returned when the model emits anything outside the
// allowed token set. Callers must fail closed on it, never proceed to
// grounded generation.
var ErrUnknownVerdict = errors.New("unknown classification verdict")

// Classifier decides whether a question is about the assistant itself, about
// the reference domain, or out of scope.
type Classifier struct {
	generator llmservice.Generator
}

func New(generator llmservice.Generator) *Classifier {
	return &Classifier{generator: generator}
}

// Classify issues one deterministic label call and parses the result against
// an exact-match allow-list.
func (c *Classifier) Classify(ctx context.Context, question string) (Verdict, error) {
	prompt := fmt.Sprintf(models.ClassifierPromptTemplate, question)

	raw, err := c.generator.Complete(ctx,
		models.ClassifierSystemPrompt,
		prompt,
		models.ClassifierTemperature,
		models.ClassifierMaxTokens,
	)
	if err != nil {
		return OutOfScope, fmt.Errorf("classification call failed: %w", err)
	}

	switch strings.TrimSpace(raw) {
	case models.TokenMeta:
		return Meta, nil
	case models.TokenCompliance:
		return Domain, nil
	case models.TokenNo:
		return OutOfScope, nil
	default:
		return OutOfScope, fmt.Errorf("%w: %q", ErrUnknownVerdict, raw)
	}
}
