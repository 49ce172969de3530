package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"compliance-rag/internal/classifier"
	"compliance-rag/internal/embedding"
	"compliance-rag/internal/formatter"
	"compliance-rag/internal/llmservice"
	"compliance-rag/internal/models"
	"compliance-rag/internal/vectorindex"
)

const retrievalRetries = 3

// Pipeline answers one question per invocation: classify the question, then
// either reject it, answer about the assistant itself, or retrieve context
// and generate a grounded answer.
type Pipeline struct {
	classifier *classifier.Classifier
	embedder   embedding.Embedder
	index      vectorindex.Index
	generator  llmservice.Generator
	topK       int
}

func NewPipeline(cls *classifier.Classifier, embedder embedding.Embedder, index vectorindex.Index, generator llmservice.Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{
		classifier: cls,
		embedder:   embedder,
		index:      index,
		generator:  generator,
		topK:       topK,
	}
}

// Answer is the public entry point. It never returns an error: any internal
// failure is logged with its stage and converted to a fixed apology string.
func (p *Pipeline) Answer(ctx context.Context, question string) string {
	answer, err := p.answer(ctx, question)
	if err != nil {
		log.Error().Err(err).Str("question", question).Msg("query pipeline failed")
		return models.ApologyMessage
	}
	return answer
}

func (p *Pipeline) answer(ctx context.Context, question string) (string, error) {
	verdict, err := p.classifier.Classify(ctx, question)
	if err != nil {
		// Fail closed: an unknown or failed verdict must never fall
		// through to grounded generation.
		return "", &StageError{Stage: StageClassify, Err: err}
	}
	log.Debug().Stringer("verdict", verdict).Msg("classified question")

	switch verdict {
	case classifier.OutOfScope:
		return models.RejectionMessage, nil
	case classifier.Meta:
		return p.metaAnswer(ctx, question)
	default:
		return p.groundedAnswer(ctx, question)
	}
}

func (p *Pipeline) metaAnswer(ctx context.Context, question string) (string, error) {
	answer, err := p.generator.Complete(ctx,
		models.MetaSystemPrompt,
		question,
		models.MetaTemperature,
		models.MetaMaxTokens,
	)
	if err != nil {
		return "", &StageError{Stage: StageMeta, Err: err}
	}
	return answer, nil
}

func (p *Pipeline) groundedAnswer(ctx context.Context, question string) (string, error) {
	vector, err := embedding.EmbedText(ctx, p.embedder, question)
	if err != nil {
		return "", &StageError{Stage: StageEmbed, Err: err}
	}

	matches, err := p.retrieve(ctx, vector)
	if err != nil {
		return "", &StageError{Stage: StageRetrieve, Err: err}
	}
	log.Debug().Int("matches", len(matches)).Msg("retrieved context chunks")

	// Zero matches still proceed with an empty context so the grounding
	// instruction emits the insufficient-context refusal.
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	contextText := strings.Join(texts, "\n")

	userPrompt := fmt.Sprintf(models.GroundedUserTemplate, contextText, question)
	answer, err := p.generator.Complete(ctx,
		models.GroundedSystemPrompt,
		userPrompt,
		models.GroundedTemperature,
		models.GroundedMaxTokens,
	)
	if err != nil {
		return "", &StageError{Stage: StageGenerate, Err: err}
	}

	return formatter.Format(answer), nil
}

// retrieve queries the index with bounded retry. Retrieval is an idempotent
// read; generation calls are never retried.
func (p *Pipeline) retrieve(ctx context.Context, vector []float32) ([]models.Match, error) {
	var lastErr error
	for attempt := 0; attempt < retrievalRetries; attempt++ {
		matches, err := p.index.Query(ctx, vector, p.topK)
		if err == nil {
			return matches, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("index query failed")
		if attempt < retrievalRetries-1 {
			select {
			case <-time.After(embedding.RetryDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
