package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"compliance-rag/internal/chunker"
	"compliance-rag/internal/embedding"
	"compliance-rag/internal/models"
	"compliance-rag/internal/parser"
	"compliance-rag/internal/vectorindex"
)

const progressEvery = 5

// Pipeline reads a source document, chunks it, embeds every chunk, and
// upserts the vectors into the index. Runs once, offline.
type Pipeline struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	maxSize  int
}

func NewPipeline(embedder embedding.Embedder, index vectorindex.Index, maxSize int) *Pipeline {
	return &Pipeline{embedder: embedder, index: index, maxSize: maxSize}
}

// Ingest loads the document at documentPath and populates the index. The
// first embedding failure aborts the run; vectors already upserted from a
// previous run are overwritten by id, so a failed run is repaired by
// re-running.
func (p *Pipeline) Ingest(ctx context.Context, documentPath string) (*models.IngestionReport, error) {
	log.Info().Str("path", documentPath).Msg("reading document")
	text, err := parser.Extract(documentPath)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	chunks := chunker.Chunk(text, p.maxSize)
	log.Info().Int("chunks", len(chunks)).Msg("chunked document")
	if len(chunks) == 0 {
		return &models.IngestionReport{}, nil
	}

	records := make([]vectorindex.Record, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := embedding.EmbedText(ctx, p.embedder, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		records = append(records, vectorindex.Record{
			ID:       chunk.ID,
			Values:   vector,
			Metadata: map[string]string{vectorindex.MetadataTextKey: chunk.Text},
		})
		if (i+1)%progressEvery == 0 || i == len(chunks)-1 {
			log.Info().Msgf("Processed %d/%d chunks", i+1, len(chunks))
		}
	}

	if err := p.index.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("upserting vectors: %w", err)
	}
	log.Info().Int("vectors", len(records)).Msg("uploaded vectors to index")

	return &models.IngestionReport{
		ChunkCount:  len(chunks),
		VectorCount: len(records),
	}, nil
}
