package vectorindex

import (
	"context"

	"compliance-rag/internal/models"
)

// Record is the persisted unit: id, embedding, and the chunk text as metadata.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Index stores chunk vectors inside one namespace and serves nearest-neighbor
// queries by cosine similarity. Implementations are safe for concurrent use.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error)
	Count(ctx context.Context) (int, error)
}

// MetadataTextKey is the metadata field holding the chunk text.
const MetadataTextKey = "text"
