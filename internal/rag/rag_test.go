package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-rag/internal/classifier"
	"compliance-rag/internal/models"
	"compliance-rag/internal/vectorindex"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeIndex struct {
	matches []models.Match
	err     error
	queries int
}

func (f *fakeIndex) Upsert(ctx context.Context, records []vectorindex.Record) error { return nil }

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	f.queries++
	return f.matches, f.err
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return len(f.matches), nil }

// scriptedGenerator routes on the system prompt so one fake serves the
// classifier, the meta branch, and the grounded branch.
type scriptedGenerator struct {
	classifyToken  string
	classifyErr    error
	metaAnswer     string
	groundedAnswer string
	groundedErr    error

	metaCalls     int
	groundedCalls int
	groundedUser  string
}

func (g *scriptedGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	switch systemPrompt {
	case models.ClassifierSystemPrompt:
		return g.classifyToken, g.classifyErr
	case models.MetaSystemPrompt:
		g.metaCalls++
		return g.metaAnswer, nil
	default:
		g.groundedCalls++
		g.groundedUser = userPrompt
		return g.groundedAnswer, g.groundedErr
	}
}

func newTestPipeline(gen *scriptedGenerator, emb *fakeEmbedder, idx *fakeIndex) *Pipeline {
	return NewPipeline(classifier.New(gen), emb, idx, gen, 5)
}

func TestAnswer_OutOfScopeRejection(t *testing.T) {
	gen := &scriptedGenerator{classifyToken: "NO"}
	emb := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	idx := &fakeIndex{}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "What's the weather today?")

	assert.Equal(t, models.RejectionMessage, answer)
	assert.Zero(t, emb.calls)
	assert.Zero(t, idx.queries)
}

func TestAnswer_MetaSkipsRetrieval(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken: "YES_META",
		metaAnswer:    "I was built on an OpenAI-compatible model and a vector index over the NIST CSF 2.0.",
	}
	emb := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	idx := &fakeIndex{}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "Who built this assistant?")

	assert.Contains(t, answer, "NIST CSF 2.0")
	assert.Equal(t, 1, gen.metaCalls)
	assert.Zero(t, emb.calls, "meta path must not embed")
	assert.Zero(t, idx.queries, "meta path must not retrieve")
}

func TestAnswer_DomainPath(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken:  "YES_COMPLIANCE",
		groundedAnswer: "Answer: YES\nAccess control restricts system entry to authorized users. See PR.AA.",
	}
	emb := &fakeEmbedder{vector: []float32{0.3, 0.4}}
	idx := &fakeIndex{matches: []models.Match{
		{Score: 0.87, Text: "Access control restricts system entry to authorized users."},
	}}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "What does the framework say about access control?")

	assert.Equal(t, 1, emb.calls)
	assert.Equal(t, 1, idx.queries)
	assert.Equal(t, 1, gen.groundedCalls)
	assert.Contains(t, gen.groundedUser, "Access control restricts system entry to authorized users.")
	assert.Contains(t, gen.groundedUser, "What does the framework say about access control?")
	assert.Contains(t, answer, "Answer: YES")
	assert.Contains(t, answer, models.AttributionFooter)
}

func TestAnswer_ContextJoinedInRetrievalOrder(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken:  "YES_COMPLIANCE",
		groundedAnswer: "Answer: YES\nCovered.",
	}
	emb := &fakeEmbedder{vector: []float32{0.3, 0.4}}
	idx := &fakeIndex{matches: []models.Match{
		{Score: 0.9, Text: "first chunk"},
		{Score: 0.8, Text: "second chunk"},
	}}
	p := newTestPipeline(gen, emb, idx)

	p.Answer(context.Background(), "Is logging required?")

	assert.Contains(t, gen.groundedUser, "first chunk\nsecond chunk")
}

func TestAnswer_EmptyRetrievalStillGenerates(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken:  "YES_COMPLIANCE",
		groundedAnswer: models.RefusalSentence,
	}
	emb := &fakeEmbedder{vector: []float32{0.3, 0.4}}
	idx := &fakeIndex{matches: nil}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "What about quantum controls?")

	assert.Equal(t, 1, gen.groundedCalls, "empty context must still reach generation")
	assert.Equal(t, models.RefusalSentence, answer)
}

func TestAnswer_UnknownVerdictYieldsApology(t *testing.T) {
	gen := &scriptedGenerator{classifyToken: "MAYBE"}
	emb := &fakeEmbedder{vector: []float32{0.1}}
	idx := &fakeIndex{}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "Is logging required?")

	assert.Equal(t, models.ApologyMessage, answer)
	assert.Zero(t, gen.groundedCalls, "unknown verdict must not reach generation")
}

func TestAnswer_ClassifierFailureYieldsApology(t *testing.T) {
	gen := &scriptedGenerator{classifyErr: errors.New("rate limited")}
	emb := &fakeEmbedder{vector: []float32{0.1}}
	idx := &fakeIndex{}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "Is logging required?")
	assert.Equal(t, models.ApologyMessage, answer)
}

func TestAnswer_GenerationFailureYieldsApology(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken: "YES_COMPLIANCE",
		groundedErr:   errors.New("timeout"),
	}
	emb := &fakeEmbedder{vector: []float32{0.1}}
	idx := &fakeIndex{matches: []models.Match{{Score: 0.5, Text: "chunk"}}}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "Is logging required?")

	assert.Equal(t, models.ApologyMessage, answer)
	assert.Equal(t, 1, gen.groundedCalls, "generation is never retried")
}

func TestAnswer_RetrievalFailureRetriedThenApology(t *testing.T) {
	gen := &scriptedGenerator{classifyToken: "YES_COMPLIANCE"}
	emb := &fakeEmbedder{vector: []float32{0.1}}
	idx := &fakeIndex{err: errors.New("connection refused")}
	p := newTestPipeline(gen, emb, idx)

	answer := p.Answer(context.Background(), "Is logging required?")

	assert.Equal(t, models.ApologyMessage, answer)
	assert.Equal(t, retrievalRetries, idx.queries)
	assert.Zero(t, gen.groundedCalls)
}

func TestAnswer_StageErrorCarriesStage(t *testing.T) {
	gen := &scriptedGenerator{
		classifyToken: "YES_COMPLIANCE",
		groundedErr:   errors.New("timeout"),
	}
	emb := &fakeEmbedder{vector: []float32{0.1}}
	idx := &fakeIndex{matches: []models.Match{{Score: 0.5, Text: "chunk"}}}
	p := newTestPipeline(gen, emb, idx)

	_, err := p.answer(context.Background(), "Is logging required?")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageGenerate, stageErr.Stage)
	assert.True(t, strings.Contains(err.Error(), "timeout"))
}
